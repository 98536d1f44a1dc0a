package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/syslog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aniwatch/aniwatch-server/api"
	"github.com/aniwatch/aniwatch-server/covers"
	"github.com/aniwatch/aniwatch-server/database"
)

// coverMaxAge is how long an unread cached cover survives.
const coverMaxAge = 30 * 24 * time.Hour

func main() {
	pflag.Int("port", 8080, "Port to listen on")
	pflag.String("dbdir", "db", "Directory holding the sqlite database")
	pflag.String("cachedir", "", "Directory for the cover cache, empty disables the /covers endpoint cache")
	pflag.StringSlice("cover-host", []string{"cdn.myanimelist.net"}, "Hosts the cover proxy may fetch from")
	pflag.StringSlice("cors-origin", []string{"*"}, "Allowed CORS origins")
	pflag.String("logfile", "stdout", "Path of logfile. Use 'syslog' for syslog, 'stdout' "+
		"for standard output, or 'none' to disable logging.")
	pflag.String("tls-cert", "", "Path of TLS certificate")
	pflag.String("tls-key", "", "Path of TLS key")
	pflag.String("config", "", "Path of config file")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)
	viper.SetEnvPrefix("aniwatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("error reading config file: %v", err)
		}
	}

	setLogOutput(viper.GetString("logfile"))

	repo, err := database.New(&database.Options{
		Filename: filepath.Join(viper.GetString("dbdir"), "aniwatch.db"),
	})
	if err != nil {
		log.Fatalf("database.New: %s", err)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cachedir := viper.GetString("cachedir")
	if cachedir != "" {
		if err := os.MkdirAll(cachedir, 0o755); err != nil {
			log.Fatalf("creating cachedir: %s", err)
		}
	}
	coverCache := covers.New(covers.Options{
		Cachedir: cachedir,
		Hosts:    viper.GetStringSlice("cover-host"),
	})
	if cachedir != "" {
		go coverCache.Background(ctx, coverMaxAge)
	}

	r := mux.NewRouter()
	a := api.New(&api.Options{
		Repo:   repo,
		Covers: coverCache,
	})
	a.RegisterHandlers(r)

	cors := handlers.CORS(
		handlers.AllowedOrigins(viper.GetStringSlice("cors-origin")),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	addr := fmt.Sprintf(":%d", viper.GetInt("port"))
	srv := &http.Server{
		Addr:    addr,
		Handler: HttpLog(api.NormalizePath(cors(r))),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	certFile := viper.GetString("tls-cert")
	keyFile := viper.GetString("tls-key")
	if certFile != "" && keyFile != "" {
		log.Printf("Serving HTTPS on %s", addr)
		err = srv.ListenAndServeTLS(certFile, keyFile)
	} else {
		log.Printf("Serving HTTP on %s", addr)
		err = srv.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func setLogOutput(logfile string) {
	switch logfile {
	case "syslog":
		logw, err := syslog.New(syslog.LOG_NOTICE, "aniwatch")
		if err != nil {
			log.Fatalf("error opening syslog: %v", err)
		}
		log.SetOutput(logw)
	case "none":
		log.SetOutput(io.Discard)
	case "", "stdout":
	default:
		f, err := os.OpenFile(logfile,
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening file: %v", err)
		}
		log.SetOutput(f)
	}
	log.SetFlags(0)
}

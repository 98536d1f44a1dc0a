// Package watchlist drives the add/edit/delete workflow and keeps the
// local copy of an account's entries consistent with the server.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aniwatch/aniwatch-server/catalog"
	"github.com/aniwatch/aniwatch-server/client"
	"github.com/aniwatch/aniwatch-server/database/model"
)

// Phase is where an add/edit session currently is. A failed validation
// or server call returns to PhaseModal; only a confirmed success goes
// back to PhaseIdle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseModal
	PhaseSubmitting
)

type Mode int

const (
	ModeAdd Mode = iota
	ModeEdit
)

// searchLimit caps how many catalog records a search requests.
const searchLimit = 8

var (
	ErrNoOpenForm    = errors.New("no add or edit form is open")
	ErrTitleRequired = errors.New("title is required")
	ErrNoUser        = errors.New("user id is missing, log in again")
	ErrInvalidStatus = errors.New("status must be Watching, Completed or Plan to Watch")
	ErrInvalidRating = errors.New("rating must be between 0 and 10")
	ErrDuplicate     = errors.New("this anime is already in your watchlist")
	ErrUnverified    = errors.New("title could not be verified against the anime catalog")
	ErrUnknownEntry  = errors.New("entry is not in the local list")
)

// Form holds the fields of the open add/edit modal.
type Form struct {
	// EntryID is set in edit mode and immutable there.
	EntryID int64
	Title   string
	Status  string
	Rating  int
}

// Controller is the view controller for one account's watchlist. Local
// state is only ever mutated after the server confirmed an operation,
// so the list can be stale but never wrong.
type Controller struct {
	api      *client.Client
	catalog  *catalog.Client
	verifier Verifier
	userID   int64

	entries []client.Entry
	phase   Phase
	mode    Mode
	form    Form

	// lastSearch remembers the most recent catalog results; a title
	// picked from them skips catalog verification on submit.
	lastSearch []catalog.Anime
}

func New(api *client.Client, cat *catalog.Client, verifier Verifier, userID int64) *Controller {
	return &Controller{
		api:      api,
		catalog:  cat,
		verifier: verifier,
		userID:   userID,
	}
}

func (c *Controller) Phase() Phase { return c.phase }
func (c *Controller) Mode() Mode   { return c.mode }
func (c *Controller) Form() Form   { return c.form }

// Entries returns a copy of the local list, in server order.
func (c *Controller) Entries() []client.Entry {
	out := make([]client.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Refresh replaces the local list with the server's view.
func (c *Controller) Refresh(ctx context.Context) error {
	entries, err := c.api.Watchlist(ctx, c.userID)
	if err != nil {
		return err
	}
	c.entries = entries
	return nil
}

// OpenAdd opens an empty add form.
func (c *Controller) OpenAdd() {
	c.phase = PhaseModal
	c.mode = ModeAdd
	c.form = Form{
		Status: string(model.StatusPlanToWatch),
	}
}

// OpenEdit opens the edit form pre-filled from the local row.
func (c *Controller) OpenEdit(entryID int64) error {
	for _, e := range c.entries {
		if e.ID == entryID {
			c.phase = PhaseModal
			c.mode = ModeEdit
			c.form = Form{
				EntryID: e.ID,
				Title:   e.Title,
				Status:  e.Status,
				Rating:  e.Rating,
			}
			return nil
		}
	}
	return ErrUnknownEntry
}

// SetForm updates the editable fields of the open form.
func (c *Controller) SetForm(title, status string, rating int) {
	c.form.Title = title
	c.form.Status = status
	c.form.Rating = rating
}

// Cancel closes the form without touching local or server state.
func (c *Controller) Cancel() {
	c.phase = PhaseIdle
	c.form = Form{}
}

// Submit validates the open form and sends it to the server. On any
// failure the form stays open and the local list is untouched; on
// success the server-returned row is applied and the form closes.
func (c *Controller) Submit(ctx context.Context) error {
	if c.phase != PhaseModal {
		return ErrNoOpenForm
	}

	title := strings.TrimSpace(c.form.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if c.userID <= 0 {
		return ErrNoUser
	}
	if !model.Status(c.form.Status).Valid() {
		return ErrInvalidStatus
	}
	if c.form.Rating < 0 || c.form.Rating > 10 {
		return ErrInvalidRating
	}

	if c.mode == ModeAdd {
		if c.localDuplicate(title) {
			return ErrDuplicate
		}
		if !c.pickedFromSearch(title) {
			ok, err := c.verifier.Verify(ctx, title)
			if err != nil {
				return fmt.Errorf("verifying title: %w", err)
			}
			if !ok {
				return ErrUnverified
			}
		}
	}

	c.phase = PhaseSubmitting
	var (
		entry *client.Entry
		err   error
	)
	if c.mode == ModeAdd {
		entry, err = c.api.Add(ctx, c.userID, title, c.form.Status, c.form.Rating)
	} else {
		entry, err = c.api.Update(ctx, c.form.EntryID, title, c.form.Status, c.form.Rating)
	}
	if err != nil {
		c.phase = PhaseModal
		return err
	}

	if c.mode == ModeAdd {
		c.entries = append(c.entries, *entry)
	} else {
		for i := range c.entries {
			if c.entries[i].ID == entry.ID {
				c.entries[i] = *entry
				break
			}
		}
	}
	c.phase = PhaseIdle
	c.form = Form{}
	return nil
}

// Delete removes an entry after explicit confirmation. Declining is a
// no-op. The local row goes away only after the server confirmed.
func (c *Controller) Delete(ctx context.Context, entryID int64, confirmed bool) error {
	if !confirmed {
		return nil
	}
	if err := c.api.Delete(ctx, entryID); err != nil {
		return err
	}
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.ID != entryID {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	return nil
}

// Search queries the catalog directly, bypassing the backend, and
// remembers the results so a picked title can skip verification. An
// empty result set is "no results", not an error.
func (c *Controller) Search(ctx context.Context, query string) ([]catalog.Anime, error) {
	results, err := c.catalog.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	c.lastSearch = results
	return results, nil
}

// Pick pre-fills the add form from a previous search result.
func (c *Controller) Pick(index int) error {
	if index < 0 || index >= len(c.lastSearch) {
		return ErrUnknownEntry
	}
	record := c.lastSearch[index]
	c.phase = PhaseModal
	c.mode = ModeAdd
	c.form = Form{
		Title:  record.DisplayTitle(),
		Status: string(model.StatusPlanToWatch),
	}
	return nil
}

func (c *Controller) localDuplicate(title string) bool {
	for _, e := range c.entries {
		if strings.EqualFold(e.Title, title) {
			return true
		}
	}
	return false
}

// pickedFromSearch reports whether title matches a record of the last
// search exactly (case-insensitively), on either title variant.
func (c *Controller) pickedFromSearch(title string) bool {
	for _, record := range c.lastSearch {
		if record.TitleEquals(title) {
			return true
		}
	}
	return false
}

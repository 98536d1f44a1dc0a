package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/aniwatch/aniwatch-server/catalog"
	"github.com/aniwatch/aniwatch-server/client"
)

var (
	_ list.Item = entryItem{}
	_ list.Item = resultItem{}
)

// entryItem wraps [client.Entry] to implement [list.Item].
type entryItem struct {
	entry client.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string       { return i.entry.Title }
func (i entryItem) Description() string {
	desc := i.entry.Status
	if i.entry.Rating > 0 {
		desc = fmt.Sprintf("%s • rated %d/10", desc, i.entry.Rating)
	}
	return desc
}

// resultItem wraps [catalog.Anime] to implement [list.Item].
type resultItem struct {
	record catalog.Anime
}

func (i resultItem) FilterValue() string { return i.record.DisplayTitle() }
func (i resultItem) Title() string       { return i.record.DisplayTitle() }
func (i resultItem) Description() string {
	if i.record.Score > 0 {
		return fmt.Sprintf("score %.2f", i.record.Score)
	}
	return "not yet scored"
}

package table

import (
	"context"

	"github.com/goliatone/go-dataview/components/dataset"
)

// RowAction is one entry in a row's action menu. Shortcut is a display hint
// only; nothing binds it to a key handler.
type RowAction struct {
	Label       string                                              `json:"label"`
	Icon        string                                              `json:"icon,omitempty"`
	Shortcut    string                                              `json:"shortcut,omitempty"`
	Destructive bool                                                `json:"destructive,omitempty"`
	Handler     func(ctx context.Context, rec dataset.Record) error `json:"-"`
}

// CategoryFunc tags a record with the action set it should use.
type CategoryFunc func(rec dataset.Record) string

// RowActionSets maps record categories (a role, a status, ...) to the action
// list shown for rows in that category.
type RowActionSets struct {
	Category CategoryFunc
	Sets     map[string][]RowAction
	Default  []RowAction
}

// Resolve returns the action list for a record. Records without a matching
// category use Default, and DefaultRowActions when Default is empty.
func (s RowActionSets) Resolve(rec dataset.Record) []RowAction {
	if s.Category != nil && len(s.Sets) > 0 {
		if actions, ok := s.Sets[s.Category(rec)]; ok {
			return actions
		}
	}
	if len(s.Default) > 0 {
		return s.Default
	}
	return DefaultRowActions()
}

// DefaultRowActions is the illustrative menu shown when the host supplies none.
func DefaultRowActions() []RowAction {
	return []RowAction{
		{Label: "Edit", Icon: "pencil", Shortcut: "⌘E"},
		{Label: "Duplicate", Icon: "copy", Shortcut: "⌘D"},
		{Label: "Archive", Icon: "archive", Shortcut: "⌘A"},
		{Label: "Move", Icon: "folder-input", Shortcut: "⌘M"},
		{Label: "Share", Icon: "share", Shortcut: "⌘S"},
		{Label: "Favorite", Icon: "star", Shortcut: "⌘F"},
		{Label: "Delete", Icon: "trash", Shortcut: "⌘⌫", Destructive: true},
	}
}

func findAction(actions []RowAction, label string) (RowAction, bool) {
	for _, action := range actions {
		if action.Label == label {
			return action, true
		}
	}
	return RowAction{}, false
}

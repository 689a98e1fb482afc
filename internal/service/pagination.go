package service

import (
	"fmt"

	"messenger/internal/models"
)

// View selects the row predicate applied to a paginated read.
type View string

const (
	// ViewChronological hides senders on the viewer's block list.
	ViewChronological View = "chronological"
	// ViewEditable keeps only the viewer's own messages.
	ViewEditable View = "editable"
	// ViewDeletable keeps every message for the initiator and the viewer's
	// own messages for everyone else.
	ViewDeletable View = "deletable"
)

// ParseView converts user input into a View; empty input is chronological.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "":
		return ViewChronological, nil
	case ViewChronological, ViewEditable, ViewDeletable:
		return View(s), nil
	}
	return "", models.NewValidationError(fmt.Sprintf("unknown view %q", s))
}

// NewPage wraps one window of rows with its navigation metadata.
func NewPage(chatID uint, offset int, msgs []*models.Message) *models.Page {
	if msgs == nil {
		msgs = []*models.Message{}
	}
	page := &models.Page{
		ChatID:      chatID,
		Offset:      offset,
		PageNumber:  offset/models.PageSize + 1,
		Messages:    msgs,
		HasPrevious: offset >= models.PageSize,
		HasNext:     len(msgs) == models.PageSize,
	}
	if page.HasPrevious {
		page.PreviousOffset = offset - models.PageSize
	}
	if page.HasNext {
		page.NextOffset = offset + models.PageSize
	}
	return page
}

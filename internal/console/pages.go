package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"messenger/internal/models"
	"messenger/internal/service"

	"github.com/samber/lo"
)

// browse walks the pages of one chat view. The offset lives here, not in the
// service, so every fetch is a fresh query at an explicit position.
// When pick is true the user may select a message id from the current page,
// which is returned; otherwise browse returns 0 when the user leaves.
func (c *Console) browse(ctx context.Context, chatID uint, view service.View, pick bool) (uint, bool) {
	offset := 0
	for {
		page, err := c.svc.Messages.FetchPage(ctx, service.PageRequest{
			ChatID: chatID,
			Viewer: c.login,
			View:   view,
			Offset: offset,
		})
		if err != nil {
			c.fail(err)
			return 0, false
		}
		c.renderPage(page)

		options := []string{}
		if page.HasNext {
			options = append(options, "n = next page")
		}
		if page.HasPrevious {
			options = append(options, "p = previous page")
		}
		if pick && len(page.Messages) > 0 {
			options = append(options, "<id> = select message")
		}
		options = append(options, "q = back")
		c.println(hintStyle.Render(strings.Join(options, ", ")))

		choice, ok := c.prompt("> ")
		if !ok {
			return 0, false
		}
		switch {
		case choice == "q":
			return 0, false
		case choice == "n" && page.HasNext:
			offset = page.NextOffset
		case choice == "p" && page.HasPrevious:
			offset = page.PreviousOffset
		case pick:
			id, err := strconv.ParseUint(choice, 10, 64)
			if err != nil {
				c.fail(models.NewValidationError(fmt.Sprintf("unrecognized choice %q", choice)))
				continue
			}
			if _, found := lo.Find(page.Messages, func(m *models.Message) bool { return m.ID == uint(id) }); !found {
				c.fail(models.NewValidationError(fmt.Sprintf("message %d is not on this page", id)))
				continue
			}
			return uint(id), true
		default:
			c.fail(models.NewValidationError(fmt.Sprintf("unrecognized choice %q", choice)))
		}
	}
}

func (c *Console) renderPage(page *models.Page) {
	c.println(titleStyle.Render(fmt.Sprintf("Chat %d, page %d", page.ChatID, page.PageNumber)))
	if len(page.Messages) == 0 {
		c.println(hintStyle.Render("No messages"))
		return
	}

	table := c.table("ID", "Sender", "Sent", "Text")
	for _, m := range page.Messages {
		table.Append([]string{
			strconv.FormatUint(uint64(m.ID), 10),
			m.SenderLogin,
			m.SentAt.Format("2006-01-02 15:04:05"),
			m.Text,
		})
	}
	table.Render()
}

func (c *Console) viewMessages(ctx context.Context) {
	chatID, ok := c.promptID("Enter chat id: ")
	if !ok {
		return
	}
	c.browse(ctx, chatID, service.ViewChronological, false)
}

func (c *Console) editMessage(ctx context.Context) {
	chatID, ok := c.promptID("Enter chat id: ")
	if !ok {
		return
	}
	msgID, ok := c.browse(ctx, chatID, service.ViewEditable, true)
	if !ok {
		return
	}
	text, _ := c.prompt("Enter new text: ")
	if _, err := c.svc.Messages.EditMessage(ctx, c.login, chatID, msgID, text); err != nil {
		c.fail(err)
		return
	}
	c.ok("Message %d updated", msgID)
}

func (c *Console) deleteMessage(ctx context.Context) {
	chatID, ok := c.promptID("Enter chat id: ")
	if !ok {
		return
	}
	msgID, ok := c.browse(ctx, chatID, service.ViewDeletable, true)
	if !ok {
		return
	}
	if err := c.svc.Messages.DeleteMessage(ctx, c.login, chatID, msgID); err != nil {
		c.fail(err)
		return
	}
	c.ok("Message %d deleted", msgID)
}

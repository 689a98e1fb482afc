// Package console is the interactive terminal front end of the messenger.
// It drives the same services as the HTTP API through numbered menus.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"messenger/internal/cache"
	"messenger/internal/models"
	"messenger/internal/repository"
	"messenger/internal/service"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Services are the operations the console invokes.
type Services struct {
	Users         *service.UserService
	Relationships *service.RelationshipService
	Chats         *service.ChatService
	Messages      *service.MessageService
}

// NewServices wires the services over db. A nil clock uses UTC wall time.
func NewServices(db *gorm.DB, c *cache.Cache, now service.Clock) Services {
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewRelationshipRepository(db)
	chatRepo := repository.NewChatRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	return Services{
		Users:         service.NewUserService(userRepo, c),
		Relationships: service.NewRelationshipService(userRepo, listRepo, c),
		Chats:         service.NewChatService(chatRepo, userRepo, now),
		Messages:      service.NewMessageService(msgRepo, chatRepo, service.NewVisibilityFilter(userRepo, listRepo, c), now),
	}
}

// Console runs one interactive session over an input and output stream.
type Console struct {
	in    *bufio.Scanner
	out   io.Writer
	svc   Services
	login string
}

// New returns a Console reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, svc Services) *Console {
	return &Console{in: bufio.NewScanner(in), out: out, svc: svc}
}

var (
	titleStyle = color.New(color.FgCyan, color.OpBold)
	okStyle    = color.New(color.FgGreen)
	errStyle   = color.New(color.FgRed)
	hintStyle  = color.New(color.FgGray)
)

// Run loops over the start and main menus until the user exits or input ends.
// Errors from a single action are reported and the session continues.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var ok bool
		if c.login == "" {
			ok = c.startMenu(ctx)
		} else {
			ok = c.mainMenu(ctx)
		}
		if !ok {
			c.println("Bye!")
			return nil
		}
	}
}

func (c *Console) startMenu(ctx context.Context) bool {
	c.println(titleStyle.Render("MAIN MENU"))
	c.println("1. Create user")
	c.println("2. Log in")
	c.println("9. Exit")

	choice, ok := c.prompt("Please make your choice: ")
	if !ok {
		return false
	}
	switch choice {
	case "1":
		c.createUser(ctx)
	case "2":
		c.logIn(ctx)
	case "9":
		return false
	default:
		c.fail(fmt.Errorf("unrecognized choice %q", choice))
	}
	return true
}

type menuItem struct {
	key    string
	label  string
	action func(ctx context.Context)
}

func (c *Console) mainItems() []menuItem {
	return []menuItem{
		{"1", "Add to contact list", func(ctx context.Context) { c.addToList(ctx, models.ListKindContact) }},
		{"2", "Browse contact list", func(ctx context.Context) { c.listMembers(ctx, models.ListKindContact) }},
		{"3", "Remove from contact list", func(ctx context.Context) { c.removeFromList(ctx, models.ListKindContact) }},
		{"4", "Add to block list", func(ctx context.Context) { c.addToList(ctx, models.ListKindBlock) }},
		{"5", "Browse block list", func(ctx context.Context) { c.listMembers(ctx, models.ListKindBlock) }},
		{"6", "Remove from block list", func(ctx context.Context) { c.removeFromList(ctx, models.ListKindBlock) }},
		{"7", "Update status", c.updateStatus},
		{"8", "Create chat", c.createChat},
		{"9", "List chats", c.listChats},
		{"10", "Add chat member", c.addChatMember},
		{"11", "Remove chat member", c.removeChatMember},
		{"12", "Delete chat", c.deleteChat},
		{"13", "View chat messages", c.viewMessages},
		{"14", "Post message", c.postMessage},
		{"15", "Edit message", c.editMessage},
		{"16", "Delete message", c.deleteMessage},
		{"17", "Delete account", c.deleteAccount},
		{"20", "Log out", func(context.Context) { c.login = "" }},
	}
}

func (c *Console) mainMenu(ctx context.Context) bool {
	items := c.mainItems()
	c.println(titleStyle.Render("MAIN MENU (" + c.login + ")"))
	for _, item := range items {
		c.printf("%s. %s\n", item.key, item.label)
	}
	c.println("0. Exit")

	choice, ok := c.prompt("Please make your choice: ")
	if !ok || choice == "0" {
		return false
	}
	item, found := lo.Find(items, func(i menuItem) bool { return i.key == choice })
	if !found {
		c.fail(fmt.Errorf("unrecognized choice %q", choice))
		return true
	}
	item.action(ctx)
	return true
}

func (c *Console) createUser(ctx context.Context) {
	login, _ := c.prompt("Enter user login: ")
	password, _ := c.prompt("Enter user password: ")
	phone, _ := c.prompt("Enter user phone: ")

	user, err := c.svc.Users.CreateUser(ctx, service.CreateUserInput{Login: login, Password: password, Phone: phone})
	if err != nil {
		c.fail(err)
		return
	}
	c.ok("User %s was successfully created!", user.Login)
}

func (c *Console) logIn(ctx context.Context) {
	login, _ := c.prompt("Enter user login: ")
	password, _ := c.prompt("Enter user password: ")

	user, err := c.svc.Users.LogIn(ctx, login, password)
	if err != nil {
		c.fail(err)
		return
	}
	c.login = user.Login
	c.ok("Welcome %s!", user.Login)
}

func (c *Console) addToList(ctx context.Context, kind models.ListKind) {
	target, _ := c.prompt("Enter login to add: ")
	if err := c.svc.Relationships.AddToList(ctx, kind, c.login, target); err != nil {
		c.fail(err)
		return
	}
	c.ok("%s added to your %s list", target, kind)
}

func (c *Console) removeFromList(ctx context.Context, kind models.ListKind) {
	target, _ := c.prompt("Enter login to remove: ")
	if err := c.svc.Relationships.RemoveFromList(ctx, kind, c.login, target); err != nil {
		c.fail(err)
		return
	}
	c.ok("%s removed from your %s list", target, kind)
}

func (c *Console) listMembers(ctx context.Context, kind models.ListKind) {
	seq, err := c.svc.Relationships.ListMembers(ctx, kind, c.login)
	if err != nil {
		c.fail(err)
		return
	}

	table := c.table("Login", "Status")
	rows := 0
	for m, err := range seq {
		if err != nil {
			c.fail(err)
			return
		}
		table.Append([]string{m.Login, m.Status})
		rows++
	}
	if rows == 0 {
		c.println(hintStyle.Render("Your " + string(kind) + " list is empty"))
		return
	}
	table.Render()
}

func (c *Console) updateStatus(ctx context.Context) {
	status, _ := c.prompt("Enter new status: ")
	updated, err := c.svc.Users.UpdateStatus(ctx, c.login, status)
	if err != nil {
		c.fail(err)
		return
	}
	c.ok("Status updated to %q", updated)
}

func (c *Console) createChat(ctx context.Context) {
	raw, _ := c.prompt("Enter participant logins separated by commas: ")
	participants := lo.Filter(
		lo.Map(strings.Split(raw, ","), func(s string, _ int) string { return strings.TrimSpace(s) }),
		func(s string, _ int) bool { return s != "" },
	)
	opening, _ := c.prompt("Enter first message (blank to skip): ")

	chat, err := c.svc.Chats.CreateChat(ctx, service.CreateChatInput{
		Initiator:      c.login,
		Participants:   participants,
		OpeningMessage: opening,
	})
	if err != nil {
		c.fail(err)
		return
	}
	c.ok("Created %s chat %d", chat.Type, chat.ID)
}

func (c *Console) listChats(ctx context.Context) {
	chats, err := c.svc.Chats.ListChatsForUser(ctx, c.login)
	if err != nil {
		c.fail(err)
		return
	}
	if len(chats) == 0 {
		c.println(hintStyle.Render("You are not in any chat"))
		return
	}

	table := c.table("Chat", "Type", "Initiator", "Members")
	for _, chat := range chats {
		members := lo.Map(chat.Members, func(m models.ChatMembership, _ int) string { return m.MemberLogin })
		table.Append([]string{
			strconv.FormatUint(uint64(chat.ID), 10),
			string(chat.Type),
			chat.Initiator,
			strings.Join(members, ", "),
		})
	}
	table.Render()
}

func (c *Console) addChatMember(ctx context.Context) {
	chatID, ok := c.promptID("Enter chat id: ")
	if !ok {
		return
	}
	login, _ := c.prompt("Enter login to add: ")
	if err := c.svc.Chats.AddMember(ctx, c.login, chatID, login); err != nil {
		c.fail(err)
		return
	}
	c.ok("%s added to chat %d", login, chatID)
}

func (c *Console) removeChatMember(ctx context.Context) {
	chatID, ok := c.promptID("Enter chat id: ")
	if !ok {
		return
	}
	login, _ := c.prompt("Enter login to remove: ")
	if err := c.svc.Chats.RemoveMember(ctx, c.login, chatID, login); err != nil {
		c.fail(err)
		return
	}
	c.ok("%s removed from chat %d", login, chatID)
}

func (c *Console) deleteChat(ctx context.Context) {
	chatID, ok := c.promptID("Enter chat id: ")
	if !ok {
		return
	}
	if err := c.svc.Chats.DeleteChat(ctx, c.login, chatID); err != nil {
		c.fail(err)
		return
	}
	c.ok("Chat %d deleted", chatID)
}

func (c *Console) postMessage(ctx context.Context) {
	chatID, ok := c.promptID("Enter chat id: ")
	if !ok {
		return
	}
	text, _ := c.prompt("Enter message: ")
	if _, err := c.svc.Messages.PostMessage(ctx, chatID, c.login, text); err != nil {
		c.fail(err)
		return
	}
	c.ok("Message sent")
}

func (c *Console) deleteAccount(ctx context.Context) {
	answer, _ := c.prompt("Type YES to delete your account: ")
	if answer != "YES" {
		c.println(hintStyle.Render("Account kept"))
		return
	}
	if err := c.svc.Users.DeleteUser(ctx, c.login); err != nil {
		c.fail(err)
		return
	}
	c.ok("Account %s deleted", c.login)
	c.login = ""
}

func (c *Console) table(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// prompt prints label and reads one trimmed line. ok is false once input ends.
func (c *Console) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) promptID(label string) (uint, bool) {
	raw, _ := c.prompt(label)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.fail(models.NewValidationError(fmt.Sprintf("%q is not a valid id", raw)))
		return 0, false
	}
	return uint(id), true
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) ok(format string, args ...interface{}) {
	c.println(okStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) fail(err error) {
	msg := err.Error()
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.println(errStyle.Render("Error: " + msg))
}

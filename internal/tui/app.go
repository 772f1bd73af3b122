// Package tui renders the Green Buddy chat widget as a Bubbletea program: a
// collapsed launcher with an unread badge, category navigation, room lists,
// and the chat view itself, all driven by the chat coordinator.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/educatedpolarbear/green-buddy-chat/internal/chat"
)

// coordinatorUpdateMsg signals that coordinator state changed off the UI
// loop, usually from a socket push.
type coordinatorUpdateMsg struct{}

type roomsRefreshedMsg struct {
	err error
}

type roomSelectedMsg struct {
	err error
}

// messageSentMsg carries the attempted draft so a failed send can restore it.
type messageSentMsg struct {
	draft string
	err   error
}

type categoryEntry struct {
	category chat.RoomCategory
	label    string
}

var categories = []categoryEntry{
	{chat.CategoryGlobal, "Global"},
	{chat.CategorySupport, "Support"},
	{chat.CategoryGroups, "Groups"},
	{chat.CategoryPrivate, "Private"},
}

// App is the root Bubbletea model.
type App struct {
	coord    *chat.Coordinator
	updates  chan struct{}
	username string

	category chat.RoomCategory
	cursor   int
	draft    string
	busy     bool
	width    int
	height   int
}

// NewApp creates the widget model around a bound coordinator. The coordinator
// notify hook is pointed at this model's update channel.
func NewApp(coord *chat.Coordinator, username string) App {
	updates := make(chan struct{}, 1)
	coord.SetNotify(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	return App{coord: coord, updates: updates, username: username, category: chat.CategoryGlobal}
}

func (a App) Init() tea.Cmd {
	return waitForUpdate(a.updates)
}

func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return coordinatorUpdateMsg{}
	}
}

func (a App) refreshRooms() tea.Cmd {
	coord := a.coord
	return func() tea.Msg {
		return roomsRefreshedMsg{err: coord.RefreshRooms(context.Background())}
	}
}

func (a App) selectRoom(roomID string) tea.Cmd {
	coord := a.coord
	return func() tea.Msg {
		return roomSelectedMsg{err: coord.SelectRoom(context.Background(), roomID)}
	}
}

func (a App) sendDraft(draft string) tea.Cmd {
	coord := a.coord
	return func() tea.Msg {
		return messageSentMsg{draft: draft, err: coord.SendMessage(context.Background(), draft)}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case coordinatorUpdateMsg:
		return a, waitForUpdate(a.updates)

	case roomsRefreshedMsg, roomSelectedMsg:
		a.busy = false
		return a, nil

	case messageSentMsg:
		a.busy = false
		if msg.err != nil {
			// The draft survives a failed send so nothing typed is lost.
			a.draft = msg.draft
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	snap := a.coord.Snapshot()
	switch {
	case !snap.Open:
		return a.handleLauncherKey(msg)
	case snap.Minimized:
		return a.handleMinimizedKey(msg)
	}

	switch snap.View {
	case chat.ViewMenu:
		return a.handleMenuKey(msg)
	case chat.ViewRooms:
		return a.handleRoomsKey(msg, snap)
	case chat.ViewChat:
		return a.handleChatKey(msg)
	}
	return a, nil
}

func (a App) handleLauncherKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "o":
		a.coord.SetOpen(true)
		a.busy = true
		return a, a.refreshRooms()
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a App) handleMinimizedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "m", "o":
		a.coord.SetMinimized(false)
	case "x":
		a.coord.SetOpen(false)
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a App) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if a.cursor < len(categories)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "enter":
		a.category = categories[a.cursor].category
		a.cursor = 0
		a.coord.SetView(chat.ViewRooms)
		a.busy = true
		return a, a.refreshRooms()
	case "m":
		a.coord.SetMinimized(true)
	case "esc", "x":
		a.coord.SetOpen(false)
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a App) handleRoomsKey(msg tea.KeyMsg, snap chat.Snapshot) (tea.Model, tea.Cmd) {
	rooms := roomsInCategory(snap.Rooms, a.category)
	switch msg.String() {
	case "j", "down":
		if a.cursor < len(rooms)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "enter":
		if a.busy || a.cursor >= len(rooms) {
			return a, nil
		}
		a.busy = true
		return a, a.selectRoom(rooms[a.cursor].ID)
	case "r":
		a.busy = true
		return a, a.refreshRooms()
	case "m":
		a.coord.SetMinimized(true)
	case "esc":
		a.cursor = indexOfCategory(a.category)
		a.coord.SetView(chat.ViewMenu)
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyRunes:
		a.draft += string(msg.Runes)
	case tea.KeySpace:
		a.draft += " "
	case tea.KeyBackspace:
		if len(a.draft) > 0 {
			runes := []rune(a.draft)
			a.draft = string(runes[:len(runes)-1])
		}
	case tea.KeyEnter:
		if a.busy || strings.TrimSpace(a.draft) == "" {
			return a, nil
		}
		draft := a.draft
		a.draft = ""
		a.busy = true
		return a, a.sendDraft(draft)
	case tea.KeyEsc:
		a.draft = ""
		a.coord.SetView(chat.ViewRooms)
	}
	return a, nil
}

func (a App) View() string {
	snap := a.coord.Snapshot()
	switch {
	case !snap.Open:
		return a.launcherView(snap)
	case snap.Minimized:
		return a.minimizedView(snap)
	}

	switch snap.View {
	case chat.ViewRooms:
		return a.roomsView(snap)
	case chat.ViewChat:
		return a.chatView(snap)
	default:
		return a.menuView(snap)
	}
}

func (a App) launcherView(snap chat.Snapshot) string {
	var b strings.Builder
	b.WriteString(accentStyle.Render("Green Buddy"))
	if snap.UnreadTotal > 0 {
		b.WriteString("  " + badgeStyle.Render(fmt.Sprintf("%d", snap.UnreadTotal)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Your plant community is a keypress away.") + "\n\n")
	b.WriteString(" " + helpEntry("enter", "open chat") + "  " + helpEntry("q", "quit") + "\n")
	return b.String()
}

func (a App) minimizedView(snap chat.Snapshot) string {
	line := leafStyle.Render("▸ Green Buddy chat")
	if snap.UnreadTotal > 0 {
		line += "  " + badgeStyle.Render(fmt.Sprintf("%d", snap.UnreadTotal))
	}
	return line + "\n " + helpEntry("enter", "restore") + "  " + helpEntry("x", "close") + "\n"
}

func (a App) menuView(snap chat.Snapshot) string {
	var b strings.Builder
	b.WriteString(a.header("Chat"))
	for i, entry := range categories {
		cursor := "  "
		label := normalStyle.Render(entry.label)
		if i == a.cursor {
			cursor = accentStyle.Render("> ")
			label = selectedStyle.Render(entry.label)
		}
		line := cursor + label
		if n := unreadInCategory(snap, entry.category); n > 0 {
			line += " " + badgeStyle.Render(fmt.Sprintf("%d", n))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(a.footer(snap, helpEntry("enter", "browse")+"  "+helpEntry("m", "minimize")+"  "+helpEntry("esc", "close")))
	return b.String()
}

func (a App) roomsView(snap chat.Snapshot) string {
	var b strings.Builder
	b.WriteString(a.header(categoryLabel(a.category) + " rooms"))

	rooms := roomsInCategory(snap.Rooms, a.category)
	if a.busy && len(rooms) == 0 {
		b.WriteString(dimStyle.Render("  loading rooms...") + "\n")
	} else if len(rooms) == 0 {
		b.WriteString(dimStyle.Render("  no rooms here yet") + "\n")
	}
	for i, room := range rooms {
		cursor := "  "
		name := normalStyle.Render(room.Name)
		if i == a.cursor {
			cursor = accentStyle.Render("> ")
			name = selectedStyle.Render(room.Name)
		}
		line := cursor + name
		if n := snap.Unread[room.ID]; n > 0 {
			line += " " + badgeStyle.Render(fmt.Sprintf("%d", n))
		}
		if room.Description != "" {
			line += "  " + metaStyle.Render(room.Description)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(a.footer(snap, helpEntry("enter", "join")+"  "+helpEntry("r", "refresh")+"  "+helpEntry("esc", "back")))
	return b.String()
}

func (a App) chatView(snap chat.Snapshot) string {
	var b strings.Builder
	title := "Chat"
	if snap.HasRoom {
		title = snap.CurrentRoom.Name
	}
	header := accentStyle.Render(title)
	if n := len(snap.Participants); n > 0 {
		header += "  " + metaStyle.Render(fmt.Sprintf("%d here", n))
	}
	b.WriteString(header + "\n\n")

	messages := snap.Messages
	if limit := a.visibleMessages(); len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	if len(messages) == 0 {
		b.WriteString(dimStyle.Render("  no messages yet, say hi") + "\n")
	}
	for _, msg := range messages {
		sender := senderStyle.Render(msg.SenderName)
		if msg.SenderName == a.username {
			sender = accentStyle.Render("you")
		}
		b.WriteString(" " + sender + " " + normalStyle.Render(msg.Content) + "\n")
	}

	b.WriteString("\n " + inputPromptStyle.Render("> ") + a.draft + "█\n")
	b.WriteString(a.footer(snap, helpEntry("enter", "send")+"  "+helpEntry("esc", "rooms")))
	return b.String()
}

func (a App) header(title string) string {
	return accentStyle.Render("Green Buddy") + "  " + dimStyle.Render(title) + "\n\n"
}

func (a App) footer(snap chat.Snapshot, help string) string {
	out := "\n"
	if snap.LastError != "" {
		out += " " + errorStyle.Render(snap.LastError) + "\n"
	}
	if a.busy {
		out += " " + dimStyle.Render("working...") + "\n"
	}
	return out + " " + help + "\n"
}

// visibleMessages bounds the history render to the terminal height, keeping
// room for the chrome around it.
func (a App) visibleMessages() int {
	if a.height <= 0 {
		return 20
	}
	visible := a.height - 7
	if visible < 3 {
		visible = 3
	}
	return visible
}

func roomsInCategory(rooms []chat.Room, category chat.RoomCategory) []chat.Room {
	var out []chat.Room
	for _, room := range rooms {
		if room.Category == category {
			out = append(out, room)
		}
	}
	return out
}

func unreadInCategory(snap chat.Snapshot, category chat.RoomCategory) int {
	total := 0
	for _, room := range roomsInCategory(snap.Rooms, category) {
		total += snap.Unread[room.ID]
	}
	return total
}

func categoryLabel(category chat.RoomCategory) string {
	for _, entry := range categories {
		if entry.category == category {
			return entry.label
		}
	}
	return string(category)
}

func indexOfCategory(category chat.RoomCategory) int {
	for i, entry := range categories {
		if entry.category == category {
			return i
		}
	}
	return 0
}

package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wishkeep/wishkeep/internal/models"
	"github.com/wishkeep/wishkeep/internal/service"
)

// Screen identifies which of the three terminal screens is active.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRSVP
	ScreenMain
)

// View drives the interactive terminal UI. It renders one of three screens
// (login, RSVP, main) and dispatches commands against a Store.
type View struct {
	store   Store
	in      *bufio.Scanner
	out     io.Writer
	session *models.Session
	screen  Screen

	// itemIDs maps the 1-based positions printed by the last item listing
	// to item ids, so commands can say "claim 2" instead of pasting a UUID.
	itemIDs []string
}

// New returns a View reading commands from in and writing to out.
func New(store Store, in io.Reader, out io.Writer) *View {
	return &View{
		store:  store,
		in:     bufio.NewScanner(in),
		out:    out,
		screen: ScreenLogin,
	}
}

// Notify is called by the remote watcher when a collection changes on the
// server. The view refreshes lazily, so a short notice is enough.
func (v *View) Notify(collection string) {
	fmt.Fprintf(v.out, "\n(%s updated, run 'list' or 'users' to refresh)\n", collection)
}

// Run loops until the input ends or the user exits.
func (v *View) Run(ctx context.Context) {
	for {
		switch v.screen {
		case ScreenLogin:
			if !v.loginScreen(ctx) {
				return
			}
		case ScreenRSVP:
			if !v.rsvpScreen(ctx) {
				return
			}
		case ScreenMain:
			if !v.mainScreen(ctx) {
				return
			}
		}
	}
}

// loginScreen prompts for credentials until a login succeeds. Returns false
// when input is exhausted.
func (v *View) loginScreen(ctx context.Context) bool {
	fmt.Fprintln(v.out, "== Login ==")
	name := PromptLine(v.in, v.out, "Name")
	if name == "" {
		return false
	}
	password := PromptLine(v.in, v.out, "Password")

	sess, err := v.store.Login(ctx, name, password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			fmt.Fprintln(v.out, "Invalid credentials")
		} else {
			fmt.Fprintln(v.out, "Login failed:", err)
		}
		return true
	}
	v.session = sess

	// Admins manage the event, they do not RSVP to it.
	if sess.IsAdmin() || sess.Coming {
		v.screen = ScreenMain
	} else {
		v.screen = ScreenRSVP
	}
	return true
}

// rsvpScreen asks whether the user is coming. Declining logs the session
// out; cancel later brings the user back here.
func (v *View) rsvpScreen(ctx context.Context) bool {
	details, err := v.store.EventDetails(ctx)
	if err != nil {
		fmt.Fprintln(v.out, "Could not load event details:", err)
	} else if details != "" {
		fmt.Fprintln(v.out, details)
	}

	if users, err := v.store.Users(ctx); err == nil {
		fmt.Fprintln(v.out, "Confirmed guests:")
		for _, u := range users {
			if u.Coming {
				fmt.Fprintf(v.out, "- %s\n", u.Username)
			}
		}
	}

	fmt.Fprintf(v.out, "Are you coming, %s? [yes/no/exit]: ", v.session.Username)
	if !v.in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v.in.Text())) {
	case "yes", "y":
		if err := v.store.ConfirmArrival(ctx, v.session.Username); err != nil {
			fmt.Fprintln(v.out, "Could not save your answer:", err)
			return true
		}
		v.session.Coming = true
		v.screen = ScreenMain
	case "no", "n":
		if err := v.store.DeclineArrival(ctx, v.session.Username); err != nil {
			fmt.Fprintln(v.out, "Could not save your answer:", err)
			return true
		}
		fmt.Fprintln(v.out, "If you change your mind come again.")
		v.logout()
	case "exit":
		return false
	}
	return true
}

// mainScreen runs the command loop for a logged-in, confirmed user.
func (v *View) mainScreen(ctx context.Context) bool {
	fmt.Fprintf(v.out, "%s> ", v.session.Username)
	if !v.in.Scan() {
		return false
	}
	line := strings.TrimSpace(v.in.Text())
	args := strings.Fields(line)
	if len(args) == 0 {
		return true
	}

	switch args[0] {
	case "help":
		v.printHelp()
	case "list":
		v.listItems(ctx)
	case "mine":
		v.listMine(ctx)
	case "claim":
		v.mutateClaim(ctx, args, v.store.ClaimItem, "Claimed")
	case "return":
		v.mutateClaim(ctx, args, v.store.ReturnItem, "Returned")
	case "users":
		v.listUsers(ctx)
	case "details":
		v.showDetails(ctx)
	case "rename":
		v.renameSelf(ctx)
	case "cancel":
		v.cancelArrival(ctx)
	case "logout":
		v.logout()
	case "exit":
		fmt.Fprintln(v.out, "Bye")
		return false
	default:
		if v.session.IsAdmin() && v.adminCommand(ctx, args) {
			return true
		}
		fmt.Fprintln(v.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return true
}

func (v *View) printHelp() {
	fmt.Fprintln(v.out, "Available commands: help, list, mine, claim <n>, return <n>, users, details, rename, cancel, logout, exit")
	if v.session.IsAdmin() {
		fmt.Fprintln(v.out, "Admin commands: adduser, deluser, renameuser, additem, edititem <n>, delitem <n>, editdetails")
	}
}

// adminCommand dispatches admin-only commands, reporting whether args
// matched one.
func (v *View) adminCommand(ctx context.Context, args []string) bool {
	switch args[0] {
	case "adduser":
		v.addUser(ctx)
	case "deluser":
		v.deleteUser(ctx)
	case "renameuser":
		v.renameUser(ctx)
	case "additem":
		v.addItem(ctx)
	case "edititem":
		v.editItem(ctx, args)
	case "delitem":
		v.deleteItem(ctx, args)
	case "editdetails":
		v.editDetails(ctx)
	default:
		return false
	}
	return true
}

// listItems prints every item with its claim state and refreshes the
// position-to-id mapping used by claim/return/edititem/delitem.
func (v *View) listItems(ctx context.Context) {
	items, err := v.store.Items(ctx)
	if err != nil {
		fmt.Fprintln(v.out, "Could not load items:", err)
		return
	}
	v.itemIDs = v.itemIDs[:0]
	if len(items) == 0 {
		fmt.Fprintln(v.out, "No items yet")
		return
	}
	for i, it := range items {
		v.itemIDs = append(v.itemIDs, it.ID)
		status := "free"
		if it.Claimed(v.session.Username) {
			status = "claimed by you"
		} else if len(it.ClaimedBy) > 0 {
			status = "claimed"
		}
		fmt.Fprintf(v.out, "%d. %s [%s]\n", i+1, it.Name, status)
		if it.Details != "" {
			fmt.Fprintf(v.out, "   %s\n", it.Details)
		}
	}
}

// listMine prints the items the user shares in, with the claimant roster.
func (v *View) listMine(ctx context.Context) {
	items, err := v.store.Items(ctx)
	if err != nil {
		fmt.Fprintln(v.out, "Could not load items:", err)
		return
	}
	any := false
	for _, it := range items {
		if !it.Claimed(v.session.Username) {
			continue
		}
		any = true
		fmt.Fprintf(v.out, "%s: %s\n", it.Name, service.ClaimSummary(it))
	}
	if !any {
		fmt.Fprintln(v.out, "You have not claimed anything yet")
	}
}

// itemAt resolves a 1-based listing position from args[1] to an item id.
func (v *View) itemAt(args []string) (string, bool) {
	if len(args) < 2 {
		fmt.Fprintf(v.out, "Usage: %s <n>\n", args[0])
		return "", false
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 || n > len(v.itemIDs) {
		fmt.Fprintln(v.out, "No such item, run 'list' first")
		return "", false
	}
	return v.itemIDs[n-1], true
}

func (v *View) mutateClaim(ctx context.Context, args []string, op func(context.Context, string, string) error, done string) {
	id, ok := v.itemAt(args)
	if !ok {
		return
	}
	if err := op(ctx, id, v.session.Username); err != nil {
		fmt.Fprintln(v.out, "Failed:", err)
		return
	}
	fmt.Fprintln(v.out, done)
}

// listUsers prints everyone with their RSVP state.
func (v *View) listUsers(ctx context.Context) {
	users, err := v.store.Users(ctx)
	if err != nil {
		fmt.Fprintln(v.out, "Could not load users:", err)
		return
	}
	for _, u := range users {
		mark := " "
		if u.Coming {
			mark = "+"
		}
		fmt.Fprintf(v.out, "[%s] %s", mark, u.Username)
		if u.IsAdmin() {
			fmt.Fprint(v.out, " (admin)")
		}
		fmt.Fprintln(v.out)
	}
}

func (v *View) showDetails(ctx context.Context) {
	details, err := v.store.EventDetails(ctx)
	if err != nil {
		fmt.Fprintln(v.out, "Could not load event details:", err)
		return
	}
	if details == "" {
		fmt.Fprintln(v.out, "No event details yet")
		return
	}
	fmt.Fprintln(v.out, details)
}

// renameSelf changes the logged-in user's own name.
func (v *View) renameSelf(ctx context.Context) {
	newName := PromptLine(v.in, v.out, "New name")
	if newName == "" {
		return
	}
	if err := v.store.RenameUser(ctx, v.session.Username, newName); err != nil {
		if errors.Is(err, models.ErrNameConflict) {
			fmt.Fprintln(v.out, "That name is already taken")
		} else {
			fmt.Fprintln(v.out, "Rename failed:", err)
		}
		return
	}
	v.session.Username = newName
	fmt.Fprintln(v.out, "Renamed")
}

// cancelArrival returns the user's claims and sends them back to the RSVP
// screen, session intact.
func (v *View) cancelArrival(ctx context.Context) {
	if !Confirm(v.in, v.out, "Cancel your arrival and return all your claims?") {
		return
	}
	warnings, err := v.store.CancelArrival(ctx, v.session.Username)
	for _, w := range warnings {
		fmt.Fprintln(v.out, "Warning:", w)
	}
	if err != nil {
		fmt.Fprintln(v.out, "Cancel failed:", err)
		return
	}
	v.session.Coming = false
	v.screen = ScreenRSVP
}

func (v *View) logout() {
	v.store.Logout()
	v.session = nil
	v.itemIDs = nil
	v.screen = ScreenLogin
}

func (v *View) addUser(ctx context.Context) {
	name := PromptLine(v.in, v.out, "Username")
	password := PromptLine(v.in, v.out, "Password")
	if err := v.store.CreateUser(ctx, name, password); err != nil {
		fmt.Fprintln(v.out, "Could not create user:", err)
		return
	}
	fmt.Fprintln(v.out, "User created")
}

func (v *View) deleteUser(ctx context.Context) {
	name := PromptLine(v.in, v.out, "Username")
	if name == "" {
		return
	}
	if name == v.session.Username {
		fmt.Fprintln(v.out, "You cannot delete yourself")
		return
	}
	users, err := v.store.Users(ctx)
	if err != nil {
		fmt.Fprintln(v.out, "Could not load users:", err)
		return
	}
	for _, u := range users {
		if u.Username == name && u.IsAdmin() {
			fmt.Fprintln(v.out, "Admins cannot be deleted")
			return
		}
	}
	if !Confirm(v.in, v.out, fmt.Sprintf("Delete %s and release their claims?", name)) {
		return
	}
	warnings, err := v.store.DeleteUser(ctx, name)
	if err != nil {
		fmt.Fprintln(v.out, "Could not delete user:", err)
		return
	}
	for _, w := range warnings {
		fmt.Fprintln(v.out, "Warning:", w)
	}
	fmt.Fprintln(v.out, "User deleted")
}

func (v *View) renameUser(ctx context.Context) {
	oldName := PromptLine(v.in, v.out, "Current name")
	newName := PromptLine(v.in, v.out, "New name")
	if oldName == "" || newName == "" {
		return
	}
	if err := v.store.RenameUser(ctx, oldName, newName); err != nil {
		if errors.Is(err, models.ErrNameConflict) {
			fmt.Fprintln(v.out, "That name is already taken")
		} else {
			fmt.Fprintln(v.out, "Rename failed:", err)
		}
		return
	}
	if oldName == v.session.Username {
		v.session.Username = newName
	}
	fmt.Fprintln(v.out, "Renamed")
}

func (v *View) addItem(ctx context.Context) {
	name := PromptLine(v.in, v.out, "Item name")
	details := PromptLine(v.in, v.out, "Details")
	if err := v.store.CreateItem(ctx, name, details); err != nil {
		fmt.Fprintln(v.out, "Could not create item:", err)
		return
	}
	fmt.Fprintln(v.out, "Item created")
}

func (v *View) editItem(ctx context.Context, args []string) {
	id, ok := v.itemAt(args)
	if !ok {
		return
	}
	name := PromptLine(v.in, v.out, "Item name")
	details := PromptLine(v.in, v.out, "Details")
	err := v.store.UpdateItem(ctx, id, name, details)
	if errors.Is(err, models.ErrNotFound) {
		// Someone deleted it meanwhile, nothing to update.
		return
	}
	if err != nil {
		fmt.Fprintln(v.out, "Could not update item:", err)
		return
	}
	fmt.Fprintln(v.out, "Item updated")
}

func (v *View) deleteItem(ctx context.Context, args []string) {
	id, ok := v.itemAt(args)
	if !ok {
		return
	}
	if !Confirm(v.in, v.out, "Delete this item?") {
		return
	}
	if err := v.store.DeleteItem(ctx, id); err != nil {
		fmt.Fprintln(v.out, "Could not delete item:", err)
		return
	}
	fmt.Fprintln(v.out, "Item deleted")
}

func (v *View) editDetails(ctx context.Context) {
	text := PromptLine(v.in, v.out, "Event details")
	if err := v.store.SetEventDetails(ctx, text); err != nil {
		fmt.Fprintln(v.out, "Could not save event details:", err)
		return
	}
	fmt.Fprintln(v.out, "Event details saved")
}

// Package console is an interactive demo shell for the notification
// engine: a readline loop that accepts a handful of commands
// (add/call/remove/removeall/quit) and pretty-prints whatever the engine
// hands back, adapted from the teacher's readline+kr/pretty print
// wrapper into a purpose-built command loop instead of a generic stdout
// redirector.
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kr/pretty"

	"notifyengine/internal/domain/notify"
	"notifyengine/internal/shared"
)

// Dispatcher is the subset of notify.Manager the console drives.
type Dispatcher interface {
	AddNotification(n notify.NotificationInput) (notify.NotificationId, error)
	RemoveNotification(groupID notify.NotificationGroupId, notifID notify.NotificationId) error
	RemoveNotificationGroup(groupID notify.NotificationGroupId, maxNotifID notify.NotificationId) error
}

// Shell runs the interactive command loop until the user quits or stdin
// closes.
type Shell struct {
	rl  *readline.Instance
	mgr Dispatcher
}

// New builds a Shell bound to mgr. The returned Shell owns its own
// cancelable stdin, the same way the teacher's Init() does, so callers
// can interrupt a blocked Readline() call via Close.
func New(mgr Dispatcher) (*Shell, error) {
	cs := readline.NewCancelableStdin(os.Stdin)
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "notify> ",
		Stdin:  cs,
	})
	if err != nil {
		_ = cs.Close()
		return nil, fmt.Errorf("console: init readline: %w", err)
	}
	return &Shell{rl: rl, mgr: mgr}, nil
}

// Close releases the readline instance.
func (s *Shell) Close() error {
	return s.rl.Close()
}

// Run reads commands until EOF/quit. out receives human-readable
// feedback; nil defaults to the shell's own stdout.
func (s *Shell) Run(out io.Writer) {
	if out == nil {
		out = s.rl.Stdout()
	}
	fmt.Fprintln(out, "commands: add <dialog-id> <text> | call <dialog-id> | remove <group-id> <notif-id> | removeall <group-id> <max-notif-id> | quit")

	for {
		line, err := s.rl.Readline()
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		cmd, ok := shared.GetAt(fields, 0)
		if !ok {
			continue
		}
		s.dispatch(out, cmd, fields[1:])
	}
}

func (s *Shell) dispatch(out io.Writer, cmd string, args []string) {
	switch cmd {
	case "quit", "exit":
		_ = s.rl.Close()
	case "add":
		s.handleAdd(out, args, notify.MessageNotification{Text: strings.Join(args[1:], " ")})
	case "call":
		s.handleAdd(out, args[:min(1, len(args))], notify.CallNotification{})
	case "remove":
		s.handleRemove(out, args)
	case "removeall":
		s.handleRemoveAll(out, args)
	default:
		fmt.Fprintf(out, "unknown command %q\n", cmd)
	}
}

func (s *Shell) handleAdd(out io.Writer, args []string, notifType notify.NotificationType) {
	dialogID, ok := parseDialogArg(args)
	if !ok {
		fmt.Fprintln(out, "usage: add <dialog-id> <text>")
		return
	}
	id, err := s.mgr.AddNotification(notify.NotificationInput{
		Dialog: notify.DialogId{Type: notify.DialogTypeUser, ID: dialogID},
		Type:   notifType,
	})
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "queued %# v\n", pretty.Formatter(id))
}

func (s *Shell) handleRemove(out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: remove <group-id> <notif-id>")
		return
	}
	groupID, err1 := strconv.Atoi(args[0])
	notifID, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(out, "group-id and notif-id must be integers")
		return
	}
	if err := s.mgr.RemoveNotification(notify.NotificationGroupId(groupID), notify.NotificationId(notifID)); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(out, "ok")
}

func (s *Shell) handleRemoveAll(out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: removeall <group-id> <max-notif-id>")
		return
	}
	groupID, err1 := strconv.Atoi(args[0])
	maxID, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(out, "group-id and max-notif-id must be integers")
		return
	}
	if err := s.mgr.RemoveNotificationGroup(notify.NotificationGroupId(groupID), notify.NotificationId(maxID)); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(out, "ok")
}

func parseDialogArg(args []string) (int64, bool) {
	first, ok := shared.GetAt(args, 0)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

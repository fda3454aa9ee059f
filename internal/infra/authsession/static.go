// Package authsession supplies notify.AuthSession collaborators. This
// process has exactly one session (the one it was started as), so
// there's no per-call lookup — just the bot flag the process was
// launched with (spec §4.4 step 1, §7).
package authsession

// Static is an AuthSession fixed for the lifetime of the process, set
// from the BOT_SESSION environment variable at startup.
type Static struct {
	Bot bool
}

// IsBot implements notify.AuthSession.
func (s Static) IsBot() bool { return s.Bot }

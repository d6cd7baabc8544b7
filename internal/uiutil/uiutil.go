// Package uiutil provides the status messages shared by the UI components.
package uiutil

import (
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
)

// DefaultTTL is how long a status message stays up when none is given.
const DefaultTTL = 5 * time.Second

func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// ReportError logs err and shows it on the status bar.
func ReportError(err error) tea.Cmd {
	slog.Error("Error reported", "error", err)
	return CmdHandler(InfoMsg{
		Type: InfoTypeError,
		Msg:  err.Error(),
	})
}

type InfoType int

const (
	InfoTypeInfo InfoType = iota
	InfoTypeSuccess
	InfoTypeWarn
	InfoTypeError
)

func (t InfoType) String() string {
	switch t {
	case InfoTypeSuccess:
		return "success"
	case InfoTypeWarn:
		return "warn"
	case InfoTypeError:
		return "error"
	default:
		return "info"
	}
}

func ReportInfo(info string) tea.Cmd {
	return CmdHandler(InfoMsg{
		Type: InfoTypeInfo,
		Msg:  info,
	})
}

func ReportSuccess(msg string) tea.Cmd {
	return CmdHandler(InfoMsg{
		Type: InfoTypeSuccess,
		Msg:  msg,
	})
}

func ReportWarn(warn string) tea.Cmd {
	slog.Warn("Warning reported", "warning", warn)
	return CmdHandler(InfoMsg{
		Type: InfoTypeWarn,
		Msg:  warn,
	})
}

type (
	// InfoMsg is shown on the status bar for TTL, or [DefaultTTL].
	InfoMsg struct {
		Type InfoType
		Msg  string
		TTL  time.Duration
	}
	// ClearStatusMsg clears the status message with the same sequence
	// number. Newer messages survive older clear requests.
	ClearStatusMsg struct {
		Seq int
	}
)

// ClearAfter returns a command clearing the status message seq after ttl.
func ClearAfter(ttl time.Duration, seq int) tea.Cmd {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

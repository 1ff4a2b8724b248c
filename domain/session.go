package domain

import (
	"fmt"

	"github.com/samber/lo"
)

type SessionStatus int

const (
	LoggedOut SessionStatus = iota
	Connecting
	LoggedIn
	LoggingOut
)

func (s SessionStatus) String() string {
	switch s {
	case LoggedOut:
		return "LOGGED_OUT"
	case Connecting:
		return "CONNECTING"
	case LoggedIn:
		return "LOGGED_IN"
	case LoggingOut:
		return "LOGGING_OUT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// transitions lists the allowed moves. Failed connects fall back to
// LoggedOut and failed disconnects fall back to LoggedIn, leaving the
// session as it was before the attempt.
var transitions = map[SessionStatus][]SessionStatus{
	LoggedOut:  {Connecting},
	Connecting: {LoggedIn, LoggedOut},
	LoggedIn:   {LoggingOut},
	LoggingOut: {LoggedOut, LoggedIn},
}

func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	return lo.Contains(transitions[s], next)
}

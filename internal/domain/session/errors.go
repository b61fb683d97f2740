package session

import "errors"

var (
	ErrSessionConflict = errors.New("an editing session is already active for this period")
	ErrNoActiveSession = errors.New("no active editing session for this period")
)

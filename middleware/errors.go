package middleware

import "errors"

var (
	// ErrNotWired is raised when a zero EffectMiddleware, or one built without
	// an OnAction, is asked to handle an action.
	ErrNotWired = errors.New("middleware: effect middleware not wired")
	// ErrClosed is raised when a closed EffectMiddleware is asked to handle an
	// action.
	ErrClosed = errors.New("middleware: effect middleware closed")
)

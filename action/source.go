// Package action holds the provenance and envelope types that travel with every
// dispatched action.
package action

import (
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/zap/zapcore"
)

// Source tells where an action was dispatched from. It is created once per
// dispatch call and never mutated afterwards.
type Source struct {
	File     string
	Function string
	Line     int
	// Info is optional free text; empty means none.
	Info string
}

var _ zapcore.ObjectMarshaler = Source{}

// Here captures the caller of Here as a Source. At most one info string is
// accepted.
func Here(info ...string) Source {
	return at(2, info)
}

// Caller is like Here but skips the given number of additional frames. It is
// meant for helpers that dispatch on behalf of their own caller.
func Caller(skip int, info ...string) Source {
	return at(skip+2, info)
}

func at(skip int, info []string) Source {
	if len(info) > 1 {
		panic("action: only one or zero info strings allowed")
	}
	src := Source{Function: "unknown", File: "unknown"}
	pcs := make([]uintptr, 1)
	if runtime.Callers(skip+1, pcs) > 0 {
		// CallersFrames resolves inlined frames, FuncForPC does not.
		frame, _ := runtime.CallersFrames(pcs).Next()
		src.File = frame.File
		src.Line = frame.Line
		src.Function = frame.Function
	}
	if len(info) == 1 {
		src.Info = info[0]
	}
	return src
}

// WithInfo returns a copy of s carrying the given info.
func (s Source) WithInfo(info string) Source {
	s.Info = info
	return s
}

func (s Source) String() string {
	base := fmt.Sprintf("%s@%s:%d", s.Function, filepath.Base(s.File), s.Line)
	if s.Info == "" {
		return base
	}
	return base + " [" + s.Info + "]"
}

// MarshalLogObject lets a Source be logged with zap.Object.
func (s Source) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("file", s.File)
	enc.AddString("function", s.Function)
	enc.AddInt("line", s.Line)
	if s.Info != "" {
		enc.AddString("info", s.Info)
	}
	return nil
}

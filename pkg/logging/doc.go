// Package logging provides structured logging built on log/slog.
//
// It is a thin configuration layer: callers construct a *slog.Logger
// once via New or NewWithLevel and pass it down. Components that log
// should accept a *slog.Logger and fall back to Nop when given nil.
package logging

// Package store persists the session log: one entry per prompt run.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one logged prompt run.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Command       string    `json:"command,omitempty"`
	Goals         string    `json:"goals"`
	ReturnFormat  string    `json:"return_format"`
	Warnings      string    `json:"warnings"`
	Model         string    `json:"model"`
	Provider      string    `json:"provider,omitempty"`
	Input         string    `json:"input,omitempty"`
	Output        string    `json:"output,omitempty"`
	OutputLength  int       `json:"output_length"`
	RecursionWave *int      `json:"recursion_wave,omitempty"`
}

// Store is the session log.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// Recent returns up to limit entries, newest first. limit <= 0 means all.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// prepare fills the fields every backend needs before writing.
func prepare(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.UTC().Truncate(time.Microsecond)
	if e.OutputLength == 0 && e.Output != "" {
		e.OutputLength = len(e.Output)
	}
	return e
}

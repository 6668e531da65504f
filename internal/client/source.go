package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/profilecards/internal/schema"
)

// defaultTimeout bounds a single profile listing when Options.Timeout is unset.
const defaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 * 1024 * 1024 // 10 MiB

// Source lists profiles from a backend.
type Source interface {
	ListProfiles(ctx context.Context) ([]schema.Profile, error)
}

// Options tunes how a Source is built.
type Options struct {
	// Timeout caps one listing request. Zero means defaultTimeout.
	Timeout time.Duration
	// CheckStatus rejects non-2xx responses even when the body parses.
	CheckStatus bool
}

// NewSource returns a Source for the given backend location.
// "file:<path>" reads a JSON document from disk; anything else is treated as
// the base URL of an HTTP backend serving GET /profiles.
// Example: "https://profiles.example.com" or "file:testdata/profiles.json".
func NewSource(location string, opts Options) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("backend location is required")
	}
	if path, ok := strings.CutPrefix(location, "file:"); ok {
		if path == "" {
			return nil, fmt.Errorf("invalid backend %q: file path is empty", location)
		}
		return &FileSource{Path: path}, nil
	}
	return NewHTTPClient(location, opts)
}

// ErrorKind classifies a FetchError.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindStatus  ErrorKind = "status"
	KindParse   ErrorKind = "parse"
)

// FetchError is the single failure kind of a profile listing: the request
// failed, the status was rejected, or the body did not parse.
type FetchError struct {
	Kind   ErrorKind
	Source string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error from %s (HTTP %d): %v", e.Kind, e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("%s error from %s: %v", e.Kind, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrUnreadable        = errors.New("directory unreadable")
	ErrUnplayable        = errors.New("track unplayable")
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrEmptyCatalog      = errors.New("no playable tracks")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// PlayerError wraps an error with a user-friendly suggestion.
type PlayerError struct {
	Err        error
	Suggestion string
}

func (e *PlayerError) Error() string {
	return e.Err.Error()
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &PlayerError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var playerErr *PlayerError
	if errors.As(err, &playerErr) && playerErr.Suggestion != "" {
		return playerErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrUnreadable) || strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "no such file or directory") {
		return "Check that the directory exists and is readable, or pass another path"
	}

	if errors.Is(err, ErrDeviceUnavailable) {
		return "Make sure a sound card is present and not held exclusively by another program"
	}

	if errors.Is(err, ErrUnplayable) {
		return "The file may be corrupt or in an unsupported format"
	}

	if errors.Is(err, ErrEmptyCatalog) {
		return "Supported formats are set by library.extensions in the config file"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'empitrio config init' to create a fresh configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

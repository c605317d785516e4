package domain

import (
	"fmt"
	"strings"
)

// FetchError reports a feed that could not be retrieved or parsed. Status is
// zero when the failure happened before a response was received.
type FetchError struct {
	URL     string
	Status  int
	Snippet string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("fetch feed %s: status %d body: %s", e.URL, e.Status, e.Snippet)
	case e.Err != nil:
		return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch feed %s failed", e.URL)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// TranslationError reports a failed translation for a single entry.
type TranslationError struct {
	EntryID string
	Err     error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate entry %s: %v", e.EntryID, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// PersistenceError reports entries that were not written. Entries not listed
// in FailedIDs reached storage.
type PersistenceError struct {
	FailedIDs []string
	Err       error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("persist %d entries failed", len(e.FailedIDs))
	if len(e.FailedIDs) > 0 {
		msg += " [" + strings.Join(e.FailedIDs, ",") + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PersistenceError) Unwrap() error { return e.Err }

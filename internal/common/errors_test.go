package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	for _, target := range []error{ErrorNotFound, ErrClosed, ErrInvalidStatus, ErrEmptyDraft, ErrUnknownCollection} {
		wrapped := fmt.Errorf("op failed: %w", target)
		if !errors.Is(wrapped, target) {
			t.Fatalf("expected %v to match through wrapping", target)
		}
	}
}

func TestSentinels_AreDistinct(t *testing.T) {
	if errors.Is(ErrorNotFound, ErrClosed) {
		t.Fatalf("ErrorNotFound must not match ErrClosed")
	}
	if errors.Is(ErrInvalidStatus, ErrEmptyDraft) {
		t.Fatalf("ErrInvalidStatus must not match ErrEmptyDraft")
	}
}

//go:build !js_eval

package persist

import (
	"errors"
	"testing"
)

func TestJSMatcherUnavailableWithoutTag(t *testing.T) {
	if jsMatcherAvailable() {
		t.Fatalf("stub should report the engine as unavailable")
	}
	if _, err := JSMatcher(`actionType === "todos/add"`); !errors.Is(err, ErrMatcherUnavailable) {
		t.Fatalf("expected ErrMatcherUnavailable, got %v", err)
	}
}

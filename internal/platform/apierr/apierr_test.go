package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsPassesThroughWrapped(t *testing.T) {
	base := WithRaw(http.StatusBadGateway, "malformed_upstream_response", errors.New("bad json"), "")
	got := As(fmt.Errorf("outer: %w", base))
	if got != base {
		t.Fatalf("As returned %+v", got)
	}
	if got.Raw == nil || *got.Raw != "" {
		t.Fatalf("empty raw should be kept, got %v", got.Raw)
	}
}

func TestAsDefaultsToInternal(t *testing.T) {
	got := As(errors.New("boom"))
	if got.Status != http.StatusInternalServerError || got.Code != "internal_error" {
		t.Fatalf("got %+v", got)
	}
	if got.Raw != nil {
		t.Fatalf("unexpected raw")
	}
	if As(nil) != nil {
		t.Fatal("As(nil) should be nil")
	}
}

func TestErrorMessage(t *testing.T) {
	if New(400, "invalid_request", nil).Error() != "invalid_request" {
		t.Fatal("code fallback")
	}
	if (&Error{Status: 418}).Error() != "api error (418)" {
		t.Fatal("status fallback")
	}
	err := New(503, "upstream_unavailable", errors.New("dial"))
	if err.Error() != "dial" || !errors.Is(err, err.Err) {
		t.Fatalf("got %q", err.Error())
	}
}

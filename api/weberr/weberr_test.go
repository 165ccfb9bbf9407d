package weberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewErrorResponse(t *testing.T) {
	cause := errors.New("order[42] missing")
	err := fmt.Errorf("handling capture: %w", NotFound(cause, WithFields(map[string]interface{}{"order_id": "42"})))

	body, status, ok := Response(err)
	if !ok {
		t.Fatal("expected a response to be attached")
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, status)
	}

	want := &ErrorResponse{Success: false, Message: "the resource could not be found"}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("unexpected body (-want +got):\n%s", diff)
	}

	fields, ok := Fields(err)
	if !ok || fields["order_id"] != "42" {
		t.Fatalf("expected order_id field, got %v", fields)
	}

	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to stay reachable")
	}
}

func TestPlainErrorHasNoResponse(t *testing.T) {
	if _, _, ok := Response(errors.New("boom")); ok {
		t.Fatal("plain errors must not carry a response")
	}
}

func TestFieldsMergeAcrossWraps(t *testing.T) {
	inner := Wrap(errors.New("provider said no"), WithFields(map[string]interface{}{"provider": "paypal", "order_id": "inner"}))
	joined := fmt.Errorf("%w: %w", errors.New("payment creation failed"), inner)
	err := Wrap(joined, WithFields(map[string]interface{}{"order_id": "outer"}))

	fields, ok := Fields(err)
	if !ok {
		t.Fatal("expected fields")
	}

	want := map[string]interface{}{"provider": "paypal", "order_id": "outer"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

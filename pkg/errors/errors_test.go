package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeStateConflict: http.StatusUnprocessableEntity,
		CodeRateLimit:     http.StatusTooManyRequests,
		CodeDependency:    http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("code %s: expected status %d, got %d", code, status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	if got := MetadataFor(Code("MYSTERY")).HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "db down")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	typed := New(CodeNotFound, "missing item")
	wrapped := fmt.Errorf("outer: %w", typed)

	found := As(wrapped)
	if found == nil {
		t.Fatal("expected typed error in chain")
	}
	if found.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", found.Code())
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestDumpIncludesChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("root"), "wrapper")
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}

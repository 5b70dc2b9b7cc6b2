package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	meta := MetadataFor(CodeNotFound)
	if meta.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404 for not found, got %d", meta.HTTPStatus)
	}
	if meta.Retryable {
		t.Fatal("not found should not be retryable")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to 500, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "load payment")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsTypedError(t *testing.T) {
	inner := New(CodeValidation, "amount must be positive").WithDetails(map[string]string{"amount_paid": "is invalid"})
	wrapped := Wrap(CodeInternal, inner, "outer")

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeInternal {
		t.Fatalf("outermost code should win, got %s", typed.Code())
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain error should not match")
	}
}

func TestDumpBuildsChain(t *testing.T) {
	cause := stdErrors.New("db down")
	err := Wrap(CodeDependency, cause, "load order")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain to include cause, got %v", dump.Chain)
	}
}

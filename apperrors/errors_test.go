package apperrors

import (
	"errors"
	"testing"
)

func TestWrapReturnsNilForNilError(t *testing.T) {
	if err := Wrap(CategoryIO, "op", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapPreservesCategoryAndUnwraps(t *testing.T) {
	inner := errors.New("disk full")
	err := Wrap(CategoryIO, "fitsio.write", inner)
	if !errors.Is(err, inner) {
		t.Error("Wrap() result does not unwrap to the inner error")
	}
	if !IsCategory(err, CategoryIO) {
		t.Error("IsCategory(CategoryIO) = false")
	}
	if IsCategory(err, CategoryTransform) {
		t.Error("IsCategory(CategoryTransform) = true, want false")
	}
}

func TestTransientErrorsAreRetryable(t *testing.T) {
	err := Transient("storage.s3.put", errors.New("throttled"))
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false for Transient error")
	}
}

func TestNewErrorsAreNotRetryable(t *testing.T) {
	err := New(CategoryInput, "rotate", ErrShapeMismatch)
	if IsRetryable(err) {
		t.Error("IsRetryable() = true for a non-transient error")
	}
}

func TestIsCancelledDetectsCancelledCategory(t *testing.T) {
	err := New(CategoryCancelled, "pipeline.run", ErrCancelled)
	if !IsCancelled(err) {
		t.Error("IsCancelled() = false for CategoryCancelled error")
	}
	if IsCancelled(New(CategoryIO, "x", ErrEmptyInput)) {
		t.Error("IsCancelled() = true for CategoryIO error")
	}
}

func TestErrorStringIncludesCategoryOpAndCause(t *testing.T) {
	err := New(CategoryMetadata, "bag.append", ErrMissingMetadata)
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	for _, want := range []string{"metadata", "bag.append", "required metadata missing"} {
		if !contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestIsCategoryAndIsRetryableOnPlainErrorReturnFalse(t *testing.T) {
	plain := errors.New("not a ProcessingError")
	if IsRetryable(plain) {
		t.Error("IsRetryable() = true for a plain error")
	}
	if IsCategory(plain, CategoryIO) {
		t.Error("IsCategory() = true for a plain error")
	}
}

package testutil

import (
	"errors"
	"testing"

	apperrors "centavo/internal/errors"
)

// AssertAppError fails the test unless err is an *AppError carrying the
// given code. The matched error is returned for further inspection.
func AssertAppError(t *testing.T, err error, wantCode string) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("want AppError %q, got nil", wantCode)
	case !errors.As(err, &appErr):
		t.Fatalf("want *AppError, got %T: %v", err, err)
	case appErr.Code != wantCode:
		t.Errorf("want error code %q, got %q (%s)", wantCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertNoError fails the test immediately when err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

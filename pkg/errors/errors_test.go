package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestRoleFull_ParseableMessage(t *testing.T) {
	err := RoleFull("guitar", 1, 1)

	if err.Code != CodeRoleFull {
		t.Errorf("expected code %s, got %s", CodeRoleFull, err.Code)
	}
	if err.Message != "ROLE_FULL:guitar:1:1" {
		t.Errorf("expected parseable message, got %q", err.Message)
	}

	// The UI layer splits the message on ':' to build its own wording.
	parts := strings.Split(err.Message, ":")
	if len(parts) != 4 {
		t.Fatalf("expected 4 segments, got %d (%q)", len(parts), err.Message)
	}
	if parts[1] != "guitar" || parts[2] != "1" || parts[3] != "1" {
		t.Errorf("unexpected segments: %v", parts)
	}
	if err.Details["role"] != "guitar" {
		t.Errorf("expected role detail, got %v", err.Details["role"])
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not qualified", NotQualified("drums", "guitar"), CodeNotQualified, http.StatusForbidden},
		{"already interested", AlreadyInterested("g1"), CodeAlreadyInterested, http.StatusConflict},
		{"not interested", NotInterested("g1"), CodeNotInterested, http.StatusConflict},
		{"band gig not supported", BandGigNotSupported("removeInterest"), CodeBandGigNotSupported, http.StatusConflict},
		{"gig already taken", GigAlreadyTaken("g1"), CodeGigAlreadyTaken, http.StatusConflict},
		{"incomplete confirmation", IncompleteConfirmation("musician"), CodeIncompleteConfirmation, http.StatusConflict},
		{"permission denied", PermissionDenied("only the gig owner may book"), CodeForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := GigAlreadyTaken("g1")

	if !HasCode(err, CodeGigAlreadyTaken) {
		t.Errorf("expected HasCode to match %s", CodeGigAlreadyTaken)
	}
	if HasCode(err, CodeRoleFull) {
		t.Errorf("HasCode matched wrong code")
	}
	if HasCode(errors.New("plain"), CodeGigAlreadyTaken) {
		t.Errorf("HasCode should not match plain errors")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Gig")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError should return the same AppError")
	}

	plain := errors.New("boom")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected %s, got %s", CodeInternal, converted.Code)
	}
	if converted.Err != plain {
		t.Errorf("expected original error to be preserved")
	}
}

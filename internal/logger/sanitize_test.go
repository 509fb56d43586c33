package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{
			name:      "empty string",
			input:     "",
			maxLength: 100,
			want:      "",
		},
		{
			name:      "plain string unchanged",
			input:     "generation cycle complete",
			maxLength: 100,
			want:      "generation cycle complete",
		},
		{
			name:      "control characters stripped",
			input:     "user\x00id\x1b[31m",
			maxLength: 100,
			want:      "userid[31m",
		},
		{
			name:      "whitespace preserved",
			input:     "line one\nline two\ttabbed",
			maxLength: 100,
			want:      "line one\nline two\ttabbed",
		},
		{
			name:      "invalid utf8 dropped",
			input:     "caf\xffe",
			maxLength: 100,
			want:      "cafe",
		},
		{
			name:      "truncated with ellipsis",
			input:     strings.Repeat("a", 20),
			maxLength: 10,
			want:      strings.Repeat("a", 10) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizeString_DefaultLimit(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("b", MaxGeneralStringLength+50)
	got := SanitizeString(long, 0)
	if len(got) != MaxGeneralStringLength+3 {
		t.Errorf("len = %d, want %d", len(got), MaxGeneralStringLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Truncated string should end with an ellipsis")
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	long := "/api/v1/users/" + strings.Repeat("x", MaxPathLength)
	got := SanitizePath(long)
	if len(got) != MaxPathLength+3 {
		t.Errorf("len = %d, want %d", len(got), MaxPathLength+3)
	}

	// CR and LF pass the rune filter; the JSON encoder escapes them.
	if got := SanitizePath("/api/v1/users/abc\r\nnext"); got != "/api/v1/users/abc\r\nnext" {
		t.Errorf("SanitizePath = %q", got)
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q, want empty", got)
	}

	err := errors.New("dial tcp: \x00connection refused")
	if got := SanitizeError(err); got != "dial tcp: connection refused" {
		t.Errorf("SanitizeError = %q", got)
	}

	long := errors.New(strings.Repeat("e", MaxErrorMessageLength+1))
	if got := SanitizeError(long); len(got) != MaxErrorMessageLength+3 {
		t.Errorf("len = %d, want %d", len(got), MaxErrorMessageLength+3)
	}
}

func TestSanitizeUserID(t *testing.T) {
	t.Parallel()

	id := "550e8400-e29b-41d4-a716-446655440000"
	if got := SanitizeUserID(id); got != id {
		t.Errorf("SanitizeUserID = %q, want %q", got, id)
	}

	long := strings.Repeat("f", MaxIDLength*2)
	if got := SanitizeUserID(long); len(got) != MaxIDLength+3 {
		t.Errorf("len = %d, want %d", len(got), MaxIDLength+3)
	}
}

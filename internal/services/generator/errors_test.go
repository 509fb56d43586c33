package generator

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "status code in message",
			err:  errors.New("POST failed: 429 Too Many Requests"),
			want: true,
		},
		{
			name: "rate limit phrase",
			err:  errors.New("rate limit exceeded, slow down"),
			want: true,
		},
		{
			name: "structured rate limit error",
			err:  &APIError{StatusCode: 429, Type: "rate_limit_error"},
			want: true,
		},
		{
			name: "structured quota error is not a rate limit",
			err:  &APIError{StatusCode: 429, Code: "insufficient_quota", IsPermanent: true},
			want: false,
		},
		{
			name: "wrapped structured error",
			err:  wrap(&APIError{StatusCode: 429}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRateLimitError(tt.err); got != tt.want {
				t.Errorf("IsRateLimitError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsQuotaError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "insufficient_quota in message",
			err:  errors.New(`429 {"message":"You exceeded your current quota","code":"insufficient_quota"}`),
			want: true,
		},
		{
			name: "billing phrase",
			err:  errors.New("billing hard limit reached"),
			want: true,
		},
		{
			name: "structured permanent error",
			err:  &APIError{StatusCode: 429, IsPermanent: true},
			want: true,
		},
		{
			name: "structured rate limit is not quota",
			err:  &APIError{StatusCode: 429, Type: "rate_limit_error"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsQuotaError(tt.err); got != tt.want {
				t.Errorf("IsQuotaError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExtractAPIError(t *testing.T) {
	t.Parallel()

	t.Run("non-429 errors extract nothing", func(t *testing.T) {
		t.Parallel()
		if got := ExtractAPIError(errors.New("500 internal server error")); got != nil {
			t.Errorf("Expected nil, got %+v", got)
		}
	})

	t.Run("embedded JSON is parsed", func(t *testing.T) {
		t.Parallel()
		err := errors.New(`POST "https://api.openai.com/v1/chat/completions": 429 Too Many Requests {"message":"You exceeded your current quota.","type":"insufficient_quota","code":"insufficient_quota"}`)
		apiErr := ExtractAPIError(err)
		if apiErr == nil {
			t.Fatal("Expected an APIError, got nil")
		}
		if apiErr.Code != "insufficient_quota" {
			t.Errorf("Expected code insufficient_quota, got %q", apiErr.Code)
		}
		if !apiErr.IsPermanent {
			t.Error("Expected quota error to be permanent")
		}
		if apiErr.RetryAfter == nil || *apiErr.RetryAfter != time.Hour {
			t.Errorf("Expected 1h retry-after for quota errors, got %v", apiErr.RetryAfter)
		}
	})

	t.Run("429 without JSON defaults to rate limit", func(t *testing.T) {
		t.Parallel()
		apiErr := ExtractAPIError(errors.New("429 Too Many Requests"))
		if apiErr == nil {
			t.Fatal("Expected an APIError, got nil")
		}
		if apiErr.IsPermanent {
			t.Error("Expected plain 429 to be transient")
		}
		if apiErr.RetryAfter == nil || *apiErr.RetryAfter != 60*time.Second {
			t.Errorf("Expected 60s retry-after for rate limits, got %v", apiErr.RetryAfter)
		}
	})
}

func TestGetRetryDelay(t *testing.T) {
	t.Parallel()

	quotaErr := &APIError{StatusCode: 429, IsPermanent: true}
	rateErr := &APIError{StatusCode: 429, Type: "rate_limit_error"}
	plainErr := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{
			name:    "quota first attempt",
			err:     quotaErr,
			attempt: 0,
			want:    time.Hour,
		},
		{
			name:    "quota backoff doubles",
			err:     quotaErr,
			attempt: 2,
			want:    4 * time.Hour,
		},
		{
			name:    "quota caps at a day",
			err:     quotaErr,
			attempt: 8,
			want:    24 * time.Hour,
		},
		{
			name:    "rate limit first attempt",
			err:     rateErr,
			attempt: 0,
			want:    60 * time.Second,
		},
		{
			name:    "rate limit caps at fifteen minutes",
			err:     rateErr,
			attempt: 6,
			want:    15 * time.Minute,
		},
		{
			name:    "transient error first attempt",
			err:     plainErr,
			attempt: 0,
			want:    5 * time.Second,
		},
		{
			name:    "transient backoff doubles",
			err:     plainErr,
			attempt: 3,
			want:    40 * time.Second,
		},
		{
			name:    "transient caps at five minutes",
			err:     plainErr,
			attempt: 9,
			want:    5 * time.Minute,
		},
		{
			name:    "negative attempt treated as zero",
			err:     plainErr,
			attempt: -3,
			want:    5 * time.Second,
		},
		{
			name:    "huge attempt does not overflow",
			err:     plainErr,
			attempt: 500,
			want:    5 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetRetryDelay(tt.err, tt.attempt); got != tt.want {
				t.Errorf("GetRetryDelay(%v, %d) = %v, want %v", tt.err, tt.attempt, got, tt.want)
			}
		})
	}
}

func wrap(err error) error {
	return errors.Join(errors.New("generation failed"), err)
}

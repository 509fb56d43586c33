package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/chroniclehq/feedgen/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("content_type", validateContentType); err != nil {
		panic(fmt.Sprintf("failed to register content_type validator: %v", err))
	}
}

// validateContentType validates that a string names a catalog content type
func validateContentType(fl validator.FieldLevel) bool {
	return models.IsValidContentType(models.ContentType(fl.Field().String()))
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateContentType validates a ContentType string value
func ValidateContentType(value string) error {
	if !models.IsValidContentType(models.ContentType(value)) {
		return fmt.Errorf("invalid content_type: %s (must be one of %s)", value, strings.Join(contentTypeNames(), ", "))
	}
	return nil
}

func contentTypeNames() []string {
	types := models.AllContentTypes()
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = string(ct)
	}
	return names
}

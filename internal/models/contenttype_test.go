package models

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestContentTypeDefinitions_Order pins the catalog order. The pipeline
// walks types top to bottom and stops early once its buffer fills, so a
// reorder silently changes which types generate.
func TestContentTypeDefinitions_Order(t *testing.T) {
	t.Parallel()

	want := []ContentType{
		ContentTypeLifeSummary,
		ContentTypeHealthAlert,
		ContentTypePatternPrediction,
		ContentTypeStreakAchievement,
		ContentTypeReflectiveInsight,
		ContentTypeCategoryInsight,
		ContentTypeMilestone,
		ContentTypeMemoryHighlight,
		ContentTypeActivityPattern,
		ContentTypeComparison,
		ContentTypeSeasonalReflection,
	}

	got := AllContentTypes()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("catalog order mismatch (-want +got):\n%s", diff)
	}
}

func TestContentTypeDefinitions_Cooldowns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType ContentType
		wantDays    int
	}{
		{ContentTypeLifeSummary, 1},
		{ContentTypeHealthAlert, 1},
		{ContentTypePatternPrediction, 1},
		{ContentTypeStreakAchievement, 3},
		{ContentTypeReflectiveInsight, 3},
		{ContentTypeCategoryInsight, 3},
		{ContentTypeMilestone, 7},
		{ContentTypeMemoryHighlight, 7},
		{ContentTypeActivityPattern, 7},
		{ContentTypeComparison, 14},
		{ContentTypeSeasonalReflection, 14},
	}

	for _, tt := range tests {
		t.Run(string(tt.contentType), func(t *testing.T) {
			t.Parallel()
			if got := CooldownDaysFor(tt.contentType); got != tt.wantDays {
				t.Errorf("CooldownDaysFor(%s) = %d, want %d", tt.contentType, got, tt.wantDays)
			}
		})
	}
}

func TestCooldownDaysFor_UnknownType(t *testing.T) {
	t.Parallel()

	if got := CooldownDaysFor(ContentType("weekly_digest")); got != DefaultCooldownDays {
		t.Errorf("CooldownDaysFor(unknown) = %d, want %d", got, DefaultCooldownDays)
	}
}

func TestContentTypeDefinitions_ReturnsCopy(t *testing.T) {
	t.Parallel()

	defs := ContentTypeDefinitions()
	defs[0].CooldownDays = 99

	again := ContentTypeDefinitions()
	if again[0].CooldownDays == 99 {
		t.Error("mutating the returned slice leaked into the catalog")
	}
}

func TestLookupContentType(t *testing.T) {
	t.Parallel()

	def, ok := LookupContentType(ContentTypeMilestone)
	if !ok {
		t.Fatal("expected milestone to be cataloged")
	}
	if def.Predicate != PredicateMilestoneFound {
		t.Errorf("milestone predicate = %s, want %s", def.Predicate, PredicateMilestoneFound)
	}

	if _, ok := LookupContentType(ContentType("bogus")); ok {
		t.Error("expected lookup of unknown type to fail")
	}
}

func TestIsValidContentType(t *testing.T) {
	t.Parallel()

	if !IsValidContentType(ContentTypeComparison) {
		t.Error("expected comparison to be valid")
	}
	if IsValidContentType(ContentType("")) {
		t.Error("expected empty string to be invalid")
	}
}

func TestCooldownStamp_Elapsed(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		contentType ContentType
		lastAt      time.Time
		want        bool
	}{
		{
			name:        "one day cooldown still active",
			contentType: ContentTypeLifeSummary,
			lastAt:      now.Add(-23 * time.Hour),
			want:        false,
		},
		{
			name:        "one day cooldown exactly at boundary",
			contentType: ContentTypeLifeSummary,
			lastAt:      now.Add(-24 * time.Hour),
			want:        true,
		},
		{
			name:        "seven day cooldown elapsed",
			contentType: ContentTypeMilestone,
			lastAt:      now.Add(-8 * 24 * time.Hour),
			want:        true,
		},
		{
			name:        "fourteen day cooldown one second short",
			contentType: ContentTypeComparison,
			lastAt:      now.Add(-14*24*time.Hour + time.Second),
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stamp := &CooldownStamp{Type: tt.contentType, LastGeneratedAt: tt.lastAt}
			if got := stamp.Elapsed(now); got != tt.want {
				t.Errorf("Elapsed() = %v, want %v", got, tt.want)
			}
		})
	}
}

package engine

import (
	"testing"
	"time"

	"github.com/chroniclehq/feedgen/internal/models"
)

func richSnapshot() *models.ActivitySnapshot {
	return &models.ActivitySnapshot{
		Counts: map[models.ActivityCategory]int{
			models.CategorySteps:      10,
			models.CategoryWorkouts:   5,
			models.CategoryLocations:  5,
			models.CategoryVoiceNotes: 5,
			models.CategoryTextNotes:  10,
			models.CategoryPhotos:     10,
		},
		PointsLast7Days:     45,
		FreshCollections:    3,
		UniqueActivityCount: 10,
		DataTypesPresent:    6,
	}
}

func allFindings() *models.DetectorFindings {
	findings := models.NewDetectorFindings()
	for _, kind := range models.AllDetectorKinds {
		findings.Detections[kind] = []models.Detection{{Kind: kind, Summary: "found"}}
	}
	return findings
}

func lifeSummaryDef(t *testing.T) models.ContentTypeDefinition {
	t.Helper()
	def, ok := models.LookupContentType(models.ContentTypeLifeSummary)
	if !ok {
		t.Fatal("life_summary missing from catalog")
	}
	return def
}

func TestEvaluate_AllFiltersPass(t *testing.T) {
	t.Parallel()

	in := &EligibilityInput{
		Now:          time.Now(),
		AdminEnabled: map[models.ContentType]bool{},
		UserEnabled:  map[models.ContentType]bool{},
		Cooldowns:    map[models.ContentType]time.Time{},
		Snapshot:     richSnapshot(),
		Findings:     allFindings(),
	}

	reason, ok := Evaluate(lifeSummaryDef(t), in)
	if !ok {
		t.Fatalf("Evaluate() rejected with %q, want eligible", reason)
	}
	if reason != "" {
		t.Errorf("reason = %q, want empty for eligible type", reason)
	}
}

func TestEvaluate_FilterOrderAndReasons(t *testing.T) {
	t.Parallel()

	now := time.Now()
	def := lifeSummaryDef(t)

	tests := []struct {
		name       string
		setup      func(*EligibilityInput)
		wantReason models.RejectionReason
	}{
		{
			name: "admin disabled",
			setup: func(in *EligibilityInput) {
				in.AdminEnabled[def.Type] = false
			},
			wantReason: FilterAdminEnabled,
		},
		{
			name: "admin disabled wins over user disabled",
			setup: func(in *EligibilityInput) {
				in.AdminEnabled[def.Type] = false
				in.UserEnabled[def.Type] = false
				in.Cooldowns[def.Type] = now.Add(-time.Hour)
			},
			wantReason: FilterAdminEnabled,
		},
		{
			name: "user disabled",
			setup: func(in *EligibilityInput) {
				in.UserEnabled[def.Type] = false
			},
			wantReason: FilterUserEnabled,
		},
		{
			name: "user disabled wins over cooldown",
			setup: func(in *EligibilityInput) {
				in.UserEnabled[def.Type] = false
				in.Cooldowns[def.Type] = now.Add(-time.Hour)
			},
			wantReason: FilterUserEnabled,
		},
		{
			name: "cooldown active",
			setup: func(in *EligibilityInput) {
				in.Cooldowns[def.Type] = now.Add(-time.Hour)
			},
			wantReason: FilterCooldownElapsed,
		},
		{
			name: "empty data cannot reject life summary",
			setup: func(in *EligibilityInput) {
				in.Snapshot = &models.ActivitySnapshot{}
				in.Findings = models.NewDetectorFindings()
			},
			wantReason: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := &EligibilityInput{
				Now:          now,
				AdminEnabled: map[models.ContentType]bool{},
				UserEnabled:  map[models.ContentType]bool{},
				Cooldowns:    map[models.ContentType]time.Time{},
				Snapshot:     richSnapshot(),
				Findings:     allFindings(),
			}
			tt.setup(in)

			reason, ok := Evaluate(def, in)
			if tt.wantReason == "" {
				// life_summary is always data-eligible, so wiping the
				// snapshot must not reject it.
				if !ok {
					t.Errorf("Evaluate() rejected with %q, want eligible", reason)
				}
				return
			}
			if ok {
				t.Fatal("Evaluate() = eligible, want rejection")
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluate_DataFilterRejectsGatedType(t *testing.T) {
	t.Parallel()

	def, ok := models.LookupContentType(models.ContentTypeHealthAlert)
	if !ok {
		t.Fatal("health_alert missing from catalog")
	}

	in := &EligibilityInput{
		Now:          time.Now(),
		AdminEnabled: map[models.ContentType]bool{},
		UserEnabled:  map[models.ContentType]bool{},
		Cooldowns:    map[models.ContentType]time.Time{},
		Snapshot:     richSnapshot(),
		Findings:     models.NewDetectorFindings(), // no anomaly
	}

	reason, eligible := Evaluate(def, in)
	if eligible {
		t.Fatal("expected health_alert without an anomaly to be rejected")
	}
	if reason != FilterDataEligible {
		t.Errorf("reason = %q, want %q", reason, FilterDataEligible)
	}
}

func TestEvaluate_MissingStoredStateDefaults(t *testing.T) {
	t.Parallel()

	// Empty maps everywhere: absent admin row means enabled, absent
	// preference means enabled, absent stamp means elapsed.
	in := &EligibilityInput{
		Now:          time.Now(),
		AdminEnabled: map[models.ContentType]bool{},
		UserEnabled:  map[models.ContentType]bool{},
		Cooldowns:    map[models.ContentType]time.Time{},
		Snapshot:     richSnapshot(),
		Findings:     allFindings(),
	}

	for _, def := range models.ContentTypeDefinitions() {
		if reason, ok := Evaluate(def, in); !ok {
			t.Errorf("type %s rejected with %q, want eligible with defaults", def.Type, reason)
		}
	}
}

func TestCooldownElapsed_Boundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		lastAt time.Time
		days   int
		want   bool
	}{
		{name: "one second early", lastAt: now.Add(-24*time.Hour + time.Second), days: 1, want: false},
		{name: "exact boundary is eligible", lastAt: now.Add(-24 * time.Hour), days: 1, want: true},
		{name: "one second late", lastAt: now.Add(-24*time.Hour - time.Second), days: 1, want: true},
		{name: "three day window half done", lastAt: now.Add(-36 * time.Hour), days: 3, want: false},
		{name: "fourteen day window done", lastAt: now.Add(-14 * 24 * time.Hour), days: 14, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CooldownElapsed(now, tt.lastAt, tt.days); got != tt.want {
				t.Errorf("CooldownElapsed(%v, %d days) = %v, want %v", tt.lastAt, tt.days, got, tt.want)
			}
		})
	}
}

func TestDataSupports_Predicates(t *testing.T) {
	t.Parallel()

	emptySnap := &models.ActivitySnapshot{}
	emptyFindings := models.NewDetectorFindings()

	snapWith := func(counts map[models.ActivityCategory]int) *models.ActivitySnapshot {
		return &models.ActivitySnapshot{Counts: counts}
	}
	findingsWith := func(kinds ...models.DetectorKind) *models.DetectorFindings {
		f := models.NewDetectorFindings()
		for _, k := range kinds {
			f.Detections[k] = []models.Detection{{Kind: k, Summary: "found"}}
		}
		return f
	}

	tests := []struct {
		name        string
		contentType models.ContentType
		snap        *models.ActivitySnapshot
		findings    *models.DetectorFindings
		want        bool
	}{
		{
			name:        "life summary always eligible",
			contentType: models.ContentTypeLifeSummary,
			snap:        emptySnap,
			findings:    emptyFindings,
			want:        true,
		},
		{
			name:        "health alert needs anomaly",
			contentType: models.ContentTypeHealthAlert,
			snap:        emptySnap,
			findings:    findingsWith(models.DetectorAnomaly),
			want:        true,
		},
		{
			name:        "health alert without anomaly",
			contentType: models.ContentTypeHealthAlert,
			snap:        emptySnap,
			findings:    findingsWith(models.DetectorStreak),
			want:        false,
		},
		{
			name:        "milestone needs milestone finding",
			contentType: models.ContentTypeMilestone,
			snap:        emptySnap,
			findings:    findingsWith(models.DetectorMilestone),
			want:        true,
		},
		{
			name:        "reflective insight needs movement",
			contentType: models.ContentTypeReflectiveInsight,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryLocations: 1}),
			findings:    emptyFindings,
			want:        true,
		},
		{
			name:        "reflective insight without movement",
			contentType: models.ContentTypeReflectiveInsight,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryPhotos: 9}),
			findings:    emptyFindings,
			want:        false,
		},
		{
			name:        "memory highlight needs captured media",
			contentType: models.ContentTypeMemoryHighlight,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryVoiceNotes: 1}),
			findings:    emptyFindings,
			want:        true,
		},
		{
			name:        "category insight needs five notes or photos",
			contentType: models.ContentTypeCategoryInsight,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryTextNotes: 3, models.CategoryPhotos: 2}),
			findings:    emptyFindings,
			want:        true,
		},
		{
			name:        "category insight below volume",
			contentType: models.ContentTypeCategoryInsight,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryTextNotes: 2, models.CategoryPhotos: 2}),
			findings:    emptyFindings,
			want:        false,
		},
		{
			name:        "seasonal via workouts",
			contentType: models.ContentTypeSeasonalReflection,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryWorkouts: 2}),
			findings:    emptyFindings,
			want:        true,
		},
		{
			name:        "seasonal via single event",
			contentType: models.ContentTypeSeasonalReflection,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryEvents: 1}),
			findings:    emptyFindings,
			want:        true,
		},
		{
			name:        "seasonal via note volume",
			contentType: models.ContentTypeSeasonalReflection,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryTextNotes: 4, models.CategoryVoiceNotes: 3, models.CategoryPhotos: 3}),
			findings:    emptyFindings,
			want:        true,
		},
		{
			name:        "seasonal with nothing",
			contentType: models.ContentTypeSeasonalReflection,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategoryWorkouts: 1, models.CategoryTextNotes: 9}),
			findings:    emptyFindings,
			want:        false,
		},
		{
			name:        "comparison shares movement predicate",
			contentType: models.ContentTypeComparison,
			snap:        snapWith(map[models.ActivityCategory]int{models.CategorySteps: 1}),
			findings:    emptyFindings,
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			def, ok := models.LookupContentType(tt.contentType)
			if !ok {
				t.Fatalf("%s missing from catalog", tt.contentType)
			}
			if got := DataSupports(def, tt.snap, tt.findings); got != tt.want {
				t.Errorf("DataSupports(%s) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestDataSupports_UnknownPredicateFailsClosed(t *testing.T) {
	t.Parallel()

	def := models.ContentTypeDefinition{
		Type:      models.ContentType("experimental"),
		Predicate: models.PredicateID("not_a_predicate"),
	}
	if DataSupports(def, richSnapshot(), allFindings()) {
		t.Error("unknown predicate should fail closed")
	}
}

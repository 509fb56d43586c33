package models

// ContentType identifies one kind of generated feed post.
type ContentType string

const (
	ContentTypeLifeSummary        ContentType = "life_summary"
	ContentTypeHealthAlert        ContentType = "health_alert"
	ContentTypePatternPrediction  ContentType = "pattern_prediction"
	ContentTypeStreakAchievement  ContentType = "streak_achievement"
	ContentTypeReflectiveInsight  ContentType = "reflective_insight"
	ContentTypeCategoryInsight    ContentType = "category_insight"
	ContentTypeMilestone          ContentType = "milestone"
	ContentTypeMemoryHighlight    ContentType = "memory_highlight"
	ContentTypeActivityPattern    ContentType = "activity_pattern"
	ContentTypeComparison         ContentType = "comparison"
	ContentTypeSeasonalReflection ContentType = "seasonal_reflection"
)

// PredicateID names the data-sufficiency rule a content type requires.
// The rule implementations live in the engine package.
type PredicateID string

const (
	PredicateAlways          PredicateID = "always"
	PredicateAnomalyFound    PredicateID = "anomaly_found"
	PredicatePredictionFound PredicateID = "prediction_found"
	PredicateStreakFound     PredicateID = "streak_found"
	PredicateMovementData    PredicateID = "movement_data"
	PredicateCategoryVolume  PredicateID = "category_volume"
	PredicateMilestoneFound  PredicateID = "milestone_found"
	PredicateMediaData       PredicateID = "media_data"
	PredicatePatternFound    PredicateID = "pattern_found"
	PredicateSeasonalData    PredicateID = "seasonal_data"
)

// ContentTypeDefinition describes the generation rules for a single content
// type. Definitions are fixed per deployment; runtime toggles live in the
// admin config and user preference stores, not here.
type ContentTypeDefinition struct {
	Type         ContentType `json:"type"`
	CooldownDays int         `json:"cooldown_days"`
	Predicate    PredicateID `json:"predicate"`
}

// contentTypeTable is the versioned catalog of generatable content types.
// Order matters: the pipeline walks it top to bottom and stops early once the
// candidate buffer fills, so reordering entries changes which types get a
// generation attempt. Treat any reorder as a behavior change.
var contentTypeTable = []ContentTypeDefinition{
	{Type: ContentTypeLifeSummary, CooldownDays: 1, Predicate: PredicateAlways},
	{Type: ContentTypeHealthAlert, CooldownDays: 1, Predicate: PredicateAnomalyFound},
	{Type: ContentTypePatternPrediction, CooldownDays: 1, Predicate: PredicatePredictionFound},
	{Type: ContentTypeStreakAchievement, CooldownDays: 3, Predicate: PredicateStreakFound},
	{Type: ContentTypeReflectiveInsight, CooldownDays: 3, Predicate: PredicateMovementData},
	{Type: ContentTypeCategoryInsight, CooldownDays: 3, Predicate: PredicateCategoryVolume},
	{Type: ContentTypeMilestone, CooldownDays: 7, Predicate: PredicateMilestoneFound},
	{Type: ContentTypeMemoryHighlight, CooldownDays: 7, Predicate: PredicateMediaData},
	{Type: ContentTypeActivityPattern, CooldownDays: 7, Predicate: PredicatePatternFound},
	{Type: ContentTypeComparison, CooldownDays: 14, Predicate: PredicateMovementData},
	{Type: ContentTypeSeasonalReflection, CooldownDays: 14, Predicate: PredicateSeasonalData},
}

// DefaultCooldownDays applies to any content type missing from the catalog,
// for example a stale row written by an older deployment.
const DefaultCooldownDays = 30

var contentTypeIndex = buildContentTypeIndex()

func buildContentTypeIndex() map[ContentType]ContentTypeDefinition {
	idx := make(map[ContentType]ContentTypeDefinition, len(contentTypeTable))
	for _, def := range contentTypeTable {
		idx[def.Type] = def
	}
	return idx
}

// ContentTypeDefinitions returns the catalog in declared order. Callers get a
// copy and may not mutate the table through it.
func ContentTypeDefinitions() []ContentTypeDefinition {
	defs := make([]ContentTypeDefinition, len(contentTypeTable))
	copy(defs, contentTypeTable)
	return defs
}

// LookupContentType returns the definition for a content type, or false when
// the type is not in the catalog.
func LookupContentType(ct ContentType) (ContentTypeDefinition, bool) {
	def, ok := contentTypeIndex[ct]
	return def, ok
}

// CooldownDaysFor returns the cooldown window for a content type, falling back
// to DefaultCooldownDays for unknown types.
func CooldownDaysFor(ct ContentType) int {
	if def, ok := contentTypeIndex[ct]; ok {
		return def.CooldownDays
	}
	return DefaultCooldownDays
}

// IsValidContentType reports whether ct names a cataloged content type.
func IsValidContentType(ct ContentType) bool {
	_, ok := contentTypeIndex[ct]
	return ok
}

// AllContentTypes returns the catalog's content type names in declared order.
func AllContentTypes() []ContentType {
	types := make([]ContentType, len(contentTypeTable))
	for i, def := range contentTypeTable {
		types[i] = def.Type
	}
	return types
}

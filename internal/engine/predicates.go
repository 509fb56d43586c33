package engine

import (
	"github.com/chroniclehq/feedgen/internal/models"
)

// predicate reports whether a user's data can support one content type.
// Predicates only read; they never mutate the snapshot or findings.
type predicate func(snap *models.ActivitySnapshot, findings *models.DetectorFindings) bool

const (
	// categoryInsightMinRecords is the minimum combined note and photo
	// volume for a category insight to have anything to say.
	categoryInsightMinRecords = 5

	// seasonalMinNoteVolume qualifies a user for seasonal reflection on
	// captured-media volume alone.
	seasonalMinNoteVolume = 10

	seasonalMinWorkouts = 2
	seasonalMinPatterns = 2
)

var predicates = map[models.PredicateID]predicate{
	models.PredicateAlways: func(*models.ActivitySnapshot, *models.DetectorFindings) bool {
		return true
	},

	models.PredicateAnomalyFound: func(_ *models.ActivitySnapshot, f *models.DetectorFindings) bool {
		return f.Has(models.DetectorAnomaly)
	},

	models.PredicatePredictionFound: func(_ *models.ActivitySnapshot, f *models.DetectorFindings) bool {
		return f.Has(models.DetectorPrediction)
	},

	models.PredicateStreakFound: func(_ *models.ActivitySnapshot, f *models.DetectorFindings) bool {
		return f.Has(models.DetectorStreak)
	},

	models.PredicateMilestoneFound: func(_ *models.ActivitySnapshot, f *models.DetectorFindings) bool {
		return f.Has(models.DetectorMilestone)
	},

	models.PredicatePatternFound: func(_ *models.ActivitySnapshot, f *models.DetectorFindings) bool {
		return f.Has(models.DetectorPattern)
	},

	models.PredicateMovementData: func(s *models.ActivitySnapshot, _ *models.DetectorFindings) bool {
		return s.Count(models.CategorySteps) > 0 ||
			s.Count(models.CategoryWorkouts) > 0 ||
			s.Count(models.CategoryLocations) > 0
	},

	models.PredicateMediaData: func(s *models.ActivitySnapshot, _ *models.DetectorFindings) bool {
		return s.Count(models.CategoryPhotos) > 0 ||
			s.Count(models.CategoryVoiceNotes) > 0 ||
			s.Count(models.CategoryTextNotes) > 0
	},

	models.PredicateCategoryVolume: func(s *models.ActivitySnapshot, _ *models.DetectorFindings) bool {
		return s.Count(models.CategoryTextNotes)+s.Count(models.CategoryPhotos) >= categoryInsightMinRecords
	},

	models.PredicateSeasonalData: func(s *models.ActivitySnapshot, f *models.DetectorFindings) bool {
		if s.Count(models.CategoryWorkouts) >= seasonalMinWorkouts ||
			f.CountByKind(models.DetectorPattern) >= seasonalMinPatterns {
			return true
		}
		if s.Count(models.CategoryEvents) >= 1 {
			return true
		}
		noteVolume := s.Count(models.CategoryTextNotes) +
			s.Count(models.CategoryVoiceNotes) +
			s.Count(models.CategoryPhotos)
		return noteVolume >= seasonalMinNoteVolume
	},
}

// DataSupports runs the data-sufficiency predicate for a content type.
// Unknown predicate IDs fail closed.
func DataSupports(def models.ContentTypeDefinition, snap *models.ActivitySnapshot, findings *models.DetectorFindings) bool {
	p, ok := predicates[def.Predicate]
	if !ok {
		return false
	}
	return p(snap, findings)
}

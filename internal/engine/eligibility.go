package engine

import (
	"time"

	"github.com/chroniclehq/feedgen/internal/models"
)

// Filter names in pipeline order. When a filter fails, its name is recorded
// verbatim as the content type's rejection reason.
const (
	FilterAdminEnabled    models.RejectionReason = "admin_enabled"
	FilterUserEnabled     models.RejectionReason = "user_enabled"
	FilterCooldownElapsed models.RejectionReason = "cooldown_elapsed"
	FilterDataEligible    models.RejectionReason = "data_eligible"
)

// EligibilityInput bundles the state the filters read. Everything is read
// from the stores once at cycle start so all types are judged against the
// same view.
type EligibilityInput struct {
	Now time.Time

	// AdminEnabled and UserEnabled hold stored toggles only. A type absent
	// from either map is treated as enabled.
	AdminEnabled map[models.ContentType]bool
	UserEnabled  map[models.ContentType]bool

	// Cooldowns holds last-generation stamps. A type absent from the map
	// has never generated and its cooldown counts as elapsed.
	Cooldowns map[models.ContentType]time.Time

	Snapshot *models.ActivitySnapshot
	Findings *models.DetectorFindings
}

// Evaluate runs the four filters in fixed order and stops at the first
// failure. ok is true when every filter passes; otherwise reason carries the
// failing filter's name.
func Evaluate(def models.ContentTypeDefinition, in *EligibilityInput) (reason models.RejectionReason, ok bool) {
	if enabled, stored := in.AdminEnabled[def.Type]; stored && !enabled {
		return FilterAdminEnabled, false
	}

	if enabled, stored := in.UserEnabled[def.Type]; stored && !enabled {
		return FilterUserEnabled, false
	}

	if lastAt, stored := in.Cooldowns[def.Type]; stored && !CooldownElapsed(in.Now, lastAt, def.CooldownDays) {
		return FilterCooldownElapsed, false
	}

	if !DataSupports(def, in.Snapshot, in.Findings) {
		return FilterDataEligible, false
	}

	return "", true
}

// CooldownElapsed reports whether a cooldown window has fully passed. The
// exact boundary instant counts as elapsed.
func CooldownElapsed(now, lastGeneratedAt time.Time, cooldownDays int) bool {
	window := time.Duration(cooldownDays) * 24 * time.Hour
	return !now.Before(lastGeneratedAt.Add(window))
}

package models

import "time"

// DetectorKind names one of the upstream signal detectors consulted before
// eligibility filtering.
type DetectorKind string

const (
	DetectorPattern    DetectorKind = "pattern"
	DetectorAnomaly    DetectorKind = "anomaly"
	DetectorPrediction DetectorKind = "prediction"
	DetectorMilestone  DetectorKind = "milestone"
	DetectorStreak     DetectorKind = "streak"
)

// AllDetectorKinds lists every detector the collector queries.
var AllDetectorKinds = []DetectorKind{
	DetectorPattern,
	DetectorAnomaly,
	DetectorPrediction,
	DetectorMilestone,
	DetectorStreak,
}

// Detection is a single finding reported by a detector, kept opaque beyond
// the fields the eligibility rules and prompts need.
type Detection struct {
	Kind       DetectorKind   `json:"kind"`
	Summary    string         `json:"summary"`
	Confidence float64        `json:"confidence"`
	DetectedAt time.Time      `json:"detected_at"`
	Details    map[string]any `json:"details,omitempty"`
}

// DetectorFindings aggregates the detections from all detector kinds for one
// user and window. Kinds whose detector could not be reached appear in
// Degraded and contribute no findings.
type DetectorFindings struct {
	Detections map[DetectorKind][]Detection `json:"detections"`
	Degraded   []DetectorKind               `json:"degraded,omitempty"`
}

// NewDetectorFindings returns an empty findings set ready to be filled.
func NewDetectorFindings() *DetectorFindings {
	return &DetectorFindings{Detections: make(map[DetectorKind][]Detection)}
}

// ByKind returns the detections of one kind, nil when none were found.
func (f *DetectorFindings) ByKind(kind DetectorKind) []Detection {
	if f == nil || f.Detections == nil {
		return nil
	}
	return f.Detections[kind]
}

// Has reports whether at least one detection of the given kind exists.
func (f *DetectorFindings) Has(kind DetectorKind) bool {
	return len(f.ByKind(kind)) > 0
}

// CountByKind returns how many detections of the given kind were reported.
func (f *DetectorFindings) CountByKind(kind DetectorKind) int {
	return len(f.ByKind(kind))
}

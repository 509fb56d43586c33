package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Build information, set via -ldflags at release time
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// VersionResponse represents the version endpoint response
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Timestamp string `json:"timestamp"`
}

// VersionInfo handles the /version endpoint
func VersionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(VersionResponse{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

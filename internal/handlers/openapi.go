package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// DefaultOpenAPIPath is where the server looks for the API contract when no
// override is configured.
const DefaultOpenAPIPath = "api/openapi/openapi.yaml"

// OpenAPIHandler serves the API contract in YAML and JSON form. The file is
// read and converted once on first request, then served from memory.
type OpenAPIHandler struct {
	contractPath string
	baseDir      string

	once     sync.Once
	yamlData []byte
	jsonData []byte
	loadErr  error
}

// NewOpenAPIHandler creates a handler serving the contract at contractPath
func NewOpenAPIHandler(contractPath string) *OpenAPIHandler {
	absPath, _ := filepath.Abs(contractPath)
	baseDir, _ := filepath.Abs(filepath.Dir(contractPath))

	return &OpenAPIHandler{
		contractPath: absPath,
		baseDir:      baseDir,
	}
}

// RegisterRoutes registers the contract routes on the given router
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/openapi.json", h.ServeJSON).Methods("GET")
}

// load reads and converts the contract file on first use; later requests
// reuse the cached bytes.
func (h *OpenAPIHandler) load() error {
	h.once.Do(func() {
		// The resolved path must stay inside the contract directory.
		if !strings.HasPrefix(h.contractPath, h.baseDir+string(filepath.Separator)) {
			h.loadErr = os.ErrPermission
			return
		}

		data, err := os.ReadFile(h.contractPath)
		if err != nil {
			h.loadErr = err
			return
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			h.loadErr = err
			return
		}

		jsonBytes, err := json.Marshal(doc)
		if err != nil {
			h.loadErr = err
			return
		}

		h.yamlData = data
		h.jsonData = jsonBytes
	})

	return h.loadErr
}

// ServeYAML serves the contract in its source YAML form
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	if err := h.load(); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "API contract not available")
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.Write(h.yamlData)
}

// ServeJSON serves the contract converted to JSON
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	if err := h.load(); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "API contract not available")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(h.jsonData)
}

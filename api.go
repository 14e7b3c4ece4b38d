package newstrack

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newstrack/newstrack/journalist"
	"github.com/newstrack/newstrack/store"
)

// Scraper is the slice of the pipeline the HTTP layer depends on.
type Scraper interface {
	Scrape(ctx context.Context, urlOrOutlet string) (*journalist.OutletResult, error)
}

// APIServer represents the HTTP API server over the scraping pipeline and
// the journalist store.
type APIServer struct {
	scraper Scraper
	store   *store.Store
	cache   *ResultCache
	timeout time.Duration
}

// NewAPIServer creates a new API server. The store may be nil, in which
// case the read endpoints report persistence as unavailable. A nil cache
// disables result caching.
func NewAPIServer(scraper Scraper, st *store.Store, cache *ResultCache, requestTimeout time.Duration) *APIServer {
	if cache == nil {
		cache = NewResultCache(0)
	}
	if requestTimeout <= 0 {
		requestTimeout = 3 * time.Minute
	}
	return &APIServer{
		scraper: scraper,
		store:   st,
		cache:   cache,
		timeout: requestTimeout,
	}
}

// ScrapeRequest represents the request body for POST /api/scrape.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// JournalistsResponse represents the response for GET /api/journalists/{outlet}.
type JournalistsResponse struct {
	Outlet      string              `json:"outlet"`
	Journalists []journalist.Record `json:"journalists"`
}

// OutletsResponse represents the response for GET /api/outlets.
type OutletsResponse struct {
	Outlets []store.OutletInfo `json:"outlets"`
}

// DeleteResponse represents the response for DELETE /api/outlets/{outlet}.
type DeleteResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code, message, and an optional hint for the
// caller.
type ErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Handler builds the route table wrapped in CORS middleware.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Register routes - need both with and without trailing slash to avoid 301
	mux.HandleFunc("/api/health", s.HandleHealth)
	mux.HandleFunc("/api/scrape", s.HandleScrape)
	mux.HandleFunc("/api/journalists/", s.HandleJournalists)
	mux.HandleFunc("/api/outlets", s.RouteOutlets)
	mux.HandleFunc("/api/outlets/", s.RouteOutlets)
	mux.HandleFunc("/api/stats", s.HandleStats)

	return CORSMiddleware(mux)
}

// Start starts the HTTP server on the given address.
func (s *APIServer) Start(addr string) error {
	log.Printf("INFO: API server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// HandleHealth handles GET /api/health.
func (s *APIServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Backend server is running",
	})
}

// HandleScrape handles POST /api/scrape. Runs a full extraction for the
// requested URL or outlet name, serving repeat requests from the result
// cache.
func (s *APIServer) HandleScrape(w http.ResponseWriter, r *http.Request) {
	// Only allow POST method
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	input := strings.TrimSpace(req.URL)
	if input == "" {
		s.writeError(w, http.StatusBadRequest, "no_input", "No URL or outlet name provided")
		return
	}

	if cached := s.cache.Get(input); cached != nil {
		log.Printf("INFO: Serving cached result for %q", input)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	requestID := uuid.New()
	log.Printf("INFO: [%s] Scrape request for %q", requestID, input)

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	result, err := s.scraper.Scrape(ctx, input)
	if err != nil {
		s.writeScrapeError(w, requestID, err)
		return
	}

	log.Printf("INFO: [%s] Extracted %d journalists from %s via %s", requestID,
		len(result.Journalists), result.Outlet, result.Summary.ExtractionMethod)

	s.cache.Set(input, result)
	writeJSON(w, http.StatusOK, result)
}

// writeScrapeError maps pipeline errors to HTTP statuses: missing input is
// a 400, an unreachable target a 502, and an empty extraction a 404 with a
// hint, so the caller can tell "site down" apart from "site has no bylines".
func (s *APIServer) writeScrapeError(w http.ResponseWriter, requestID uuid.UUID, err error) {
	switch {
	case errors.Is(err, ErrNoInput):
		s.writeError(w, http.StatusBadRequest, "no_input", "No URL or outlet name provided")
	case errors.Is(err, ErrUnreachable):
		s.writeErrorWithSuggestion(w, http.StatusBadGateway, "unreachable",
			"Target website could not be reached",
			"Check the outlet name or URL and try again")
	case errors.Is(err, ErrNoJournalists):
		s.writeErrorWithSuggestion(w, http.StatusNotFound, "no_journalists",
			"No journalist profiles found",
			"The website structure may not be compatible with current scraping methods")
	default:
		log.Printf("ERROR: [%s] Scrape failed: %v", requestID, err)
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Scraping failed")
	}
}

// HandleJournalists handles GET /api/journalists/{outlet}.
func (s *APIServer) HandleJournalists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no_store", "Persistence is not configured")
		return
	}

	outletName, err := outletFromPath(r.URL.Path, "/api/journalists/")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no_outlet", "No outlet provided")
		return
	}

	records, err := s.store.GetByOutlet(outletName)
	if err != nil {
		log.Printf("ERROR: Failed to read journalists for %s: %v", outletName, err)
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read journalists")
		return
	}
	if len(records) == 0 {
		s.writeErrorWithSuggestion(w, http.StatusNotFound, "not_found",
			"No stored data for outlet "+outletName,
			"Run a scrape for this outlet first")
		return
	}

	writeJSON(w, http.StatusOK, JournalistsResponse{
		Outlet:      outletName,
		Journalists: records,
	})
}

// RouteOutlets routes /api/outlets* requests to the list and delete
// handlers.
func (s *APIServer) RouteOutlets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no_store", "Persistence is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleListOutlets(w, r)
	case http.MethodDelete:
		s.handleDeleteOutlet(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}
}

func (s *APIServer) handleListOutlets(w http.ResponseWriter, _ *http.Request) {
	outlets, err := s.store.ListOutlets()
	if err != nil {
		log.Printf("ERROR: Failed to list outlets: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list outlets")
		return
	}
	if outlets == nil {
		outlets = []store.OutletInfo{}
	}

	writeJSON(w, http.StatusOK, OutletsResponse{Outlets: outlets})
}

func (s *APIServer) handleDeleteOutlet(w http.ResponseWriter, r *http.Request) {
	outletName, err := outletFromPath(r.URL.Path, "/api/outlets/")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no_outlet", "No outlet provided")
		return
	}

	deleted, err := s.store.DeleteByOutlet(outletName)
	if err != nil {
		log.Printf("ERROR: Failed to delete outlet %s: %v", outletName, err)
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete outlet")
		return
	}

	log.Printf("INFO: Deleted %d journalists for outlet %s", deleted, outletName)
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Deleted: deleted})
}

// HandleStats handles GET /api/stats.
func (s *APIServer) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no_store", "Persistence is not configured")
		return
	}

	stats, err := s.store.GetStats()
	if err != nil {
		log.Printf("ERROR: Failed to gather stats: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to gather stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// outletFromPath extracts the outlet name from a path like
// /api/journalists/{outlet}.
func outletFromPath(path, prefix string) (string, error) {
	name := strings.TrimPrefix(path, prefix)
	if name == "" || name == path || strings.Contains(name, "/") {
		return "", errors.New("no outlet provided")
	}
	return name, nil
}

// writeError writes an error response.
func (s *APIServer) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func (s *APIServer) writeErrorWithSuggestion(w http.ResponseWriter, statusCode int, code, message, suggestion string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
		},
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// CORSMiddleware adds CORS headers so the dashboard's dev server can call
// the API from another origin.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Call the next handler
		next.ServeHTTP(w, r)
	})
}

// Package server exposes the dashboard's JSON API. The UI renders
// these payloads; no HTML is produced here.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mfurudate/apodash/internal/analytics"
	"github.com/mfurudate/apodash/internal/report"
	"github.com/mfurudate/apodash/internal/store"
)

// ErrWebhookUnconfigured is returned by the proxy when no forwarding
// URL is set in the environment.
var ErrWebhookUnconfigured = errors.New("webhook URL is not configured")

// Server is the HTTP server for the dashboard API.
type Server struct {
	store      store.Store
	summary    *analytics.SummaryBuilder
	detail     *analytics.DetailBuilder
	webhookURL string
	client     *http.Client
	mux        *http.ServeMux
}

// New creates a new Server reading from st. webhookURL may be empty;
// the proxy endpoint then answers 500.
func New(st store.Store, webhookURL string) *Server {
	s := &Server{
		store:      st,
		summary:    analytics.NewSummaryBuilder(st),
		detail:     analytics.NewDetailBuilder(st),
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/monthly-summary", s.handleMonthlySummary)
	s.mux.HandleFunc("/api/client-details", s.handleClientDetails)
	s.mux.HandleFunc("/api/proxy", s.handleProxy)
	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/api/generate-report", s.handleGenerateReport)
	s.mux.HandleFunc("/api/health", s.handleHealth)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	monthParam := r.URL.Query().Get("month")
	if monthParam == "" {
		respondError(w, http.StatusBadRequest, "Month is required")
		return
	}
	month, err := analytics.ParseMonth(monthParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.summary.Build(r.Context(), month)
	if err != nil {
		log.Printf("monthly summary for %s: %v", monthParam, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// An empty month is a valid result, not an error.
	if rows == nil {
		rows = []analytics.SummaryRow{}
	}
	respondJSON(w, rows)
}

func (s *Server) handleClientDetails(w http.ResponseWriter, r *http.Request) {
	client := r.URL.Query().Get("client")
	monthParam := r.URL.Query().Get("month")
	if client == "" || monthParam == "" {
		respondError(w, http.StatusBadRequest, "Client and month are required")
		return
	}
	month, err := analytics.ParseMonth(monthParam)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	details, err := s.detail.Build(r.Context(), client, month)
	if err != nil {
		log.Printf("client details for %s %s: %v", client, monthParam, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, details)
}

// handleProxy forwards a JSON body to the configured webhook and
// returns the upstream JSON verbatim.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.webhookURL == "" {
		respondError(w, http.StatusInternalServerError, ErrWebhookUnconfigured.Error())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("proxy: forwarding to webhook: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	upstream, err := io.ReadAll(resp.Body)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("proxy: webhook responded %d: %s", resp.StatusCode, upstream)
		respondError(w, http.StatusInternalServerError,
			fmt.Sprintf("webhook responded with status %d: %s", resp.StatusCode, upstream))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(upstream)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, map[string]string{
		"answer": report.Answer(body.Question, []any{}),
	})
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		SummaryData       any `json:"summaryData"`
		ClientDetailsData any `json:"clientDetailsData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	text := report.Generate(body.SummaryData, body.ClientDetailsData)
	respondJSON(w, map[string]string{
		"report": text,
		"html":   report.RenderHTML(text),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("writing json response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// logRequests stamps each request with an id and logs method, path
// and duration.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s %s (%s)", id[:8], r.Method, r.URL.Path, time.Since(start))
	})
}

// Serve starts the HTTP server on the given port.
func Serve(st store.Store, webhookURL string, port int) error {
	srv := New(st, webhookURL)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}

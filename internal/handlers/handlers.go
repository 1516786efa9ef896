package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/berckan/domainfinder/internal/models"
)

// DomainChecker checks a single domain
type DomainChecker interface {
	Check(ctx context.Context, domain string) models.DomainResult
}

// RecordLoader reads cached query records
type RecordLoader interface {
	Load(query string) *models.QueryRecord
}

// Handler serves domain checks and cached search results as JSON
type Handler struct {
	checker    DomainChecker
	store      RecordLoader
	defaultTLD string
	log        *zap.Logger
}

// New creates a Handler. Bare names passed to /check get defaultTLD appended.
func New(checker DomainChecker, store RecordLoader, defaultTLD string, log *zap.Logger) *Handler {
	if defaultTLD == "" {
		defaultTLD = "com"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{checker: checker, store: store, defaultTLD: defaultTLD, log: log}
}

// Routes returns the router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/check", h.CheckDomain)
	r.Get("/cache", h.CachedQuery)
	return r
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CheckDomain handles a single domain check
func (h *Handler) CheckDomain(w http.ResponseWriter, r *http.Request) {
	domain := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("domain")))
	if domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	// Add the default TLD if none provided
	if !strings.Contains(domain, ".") {
		domain = domain + "." + h.defaultTLD
	}

	result := h.checker.Check(r.Context(), domain)
	h.log.Info("http check", zap.String("domain", domain), zap.String("status", string(result.Status)))
	writeJSON(w, http.StatusOK, result)
}

// CachedQuery returns the cached record for a query
func (h *Handler) CachedQuery(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Load(query))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

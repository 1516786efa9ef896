package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berckan/domainfinder/internal/cache"
	"github.com/berckan/domainfinder/internal/models"
)

type stubChecker struct {
	got []string
}

func (s *stubChecker) Check(_ context.Context, domain string) models.DomainResult {
	s.got = append(s.got, domain)
	return models.DomainResult{Domain: domain, Status: models.StatusAvailable, Attempts: 1}
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCheckDomain(t *testing.T) {
	checker := &stubChecker{}
	h := New(checker, cache.NewStore(t.TempDir(), nil), "org", nil)

	rec := serve(t, h, "/check?domain=FreeLeaf")

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.DomainResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "freeleaf.org", got.Domain)
	assert.Equal(t, models.StatusAvailable, got.Status)
	assert.Equal(t, []string{"freeleaf.org"}, checker.got)
}

func TestCheckDomainRequiresDomain(t *testing.T) {
	checker := &stubChecker{}
	h := New(checker, cache.NewStore(t.TempDir(), nil), "", nil)

	rec := serve(t, h, "/check")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, checker.got)
}

func TestCachedQuery(t *testing.T) {
	store := cache.NewStore(t.TempDir(), nil)
	_, err := store.Save("tea", []string{"freeleaf.org"}, []string{"tea.org"}, store.Load("tea"))
	require.NoError(t, err)
	h := New(&stubChecker{}, store, "", nil)

	rec := serve(t, h, "/cache?query=TEA")

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.QueryRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []string{"freeleaf.org"}, got.AvailableDomains)
	assert.Equal(t, []string{"tea.org"}, got.UnavailableDomains)
	assert.Len(t, got.Searches, 1)

	assert.Equal(t, http.StatusBadRequest, serve(t, h, "/cache").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, "/healthz").Code)
}

package checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/berckan/domainfinder/internal/models"
)

type mapChecker struct {
	statuses map[string]models.DomainStatus
	checked  []string
}

func (m *mapChecker) Check(_ context.Context, domain string) models.DomainResult {
	m.checked = append(m.checked, domain)
	status, ok := m.statuses[domain]
	if !ok {
		status = models.StatusError
	}
	return models.DomainResult{Domain: domain, Status: status}
}

func TestClassifySplitsByOutcome(t *testing.T) {
	checker := &mapChecker{statuses: map[string]models.DomainStatus{
		"free.com":  models.StatusAvailable,
		"taken.com": models.StatusTaken,
	}}
	c := NewClassifier(checker, nil, nil)

	got := c.Classify(context.Background(),
		[]string{"Free.com", "taken.com", "flaky.com"}, nil, 30)

	assert.Equal(t, []string{"free.com"}, got.Available)
	assert.Equal(t, []string{"taken.com"}, got.Unavailable)
	assert.Equal(t, []string{"flaky.com"}, got.Undetermined)
	assert.Equal(t, []string{"free.com", "taken.com", "flaky.com"}, checker.checked)
}

func TestClassifySkipsOverLongCandidates(t *testing.T) {
	checker := &mapChecker{statuses: map[string]models.DomainStatus{
		"short.com": models.StatusAvailable,
	}}
	c := NewClassifier(checker, nil, nil)

	got := c.Classify(context.Background(),
		[]string{"verylongname.com", "short.com"}, nil, 10)

	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, []string{"short.com"}, got.Available)
	assert.Empty(t, got.Unavailable)
	assert.NotContains(t, checker.checked, "verylongname.com")
}

func TestClassifyNeverRechecksKnownDomains(t *testing.T) {
	checker := &mapChecker{statuses: map[string]models.DomainStatus{
		"new.com": models.StatusTaken,
	}}
	c := NewClassifier(checker, nil, nil)

	got := c.Classify(context.Background(),
		[]string{"OLD.com", "new.com"}, []string{"old.COM"}, 30)

	assert.Equal(t, []string{"new.com"}, checker.checked)
	assert.Equal(t, 1, got.AlreadyKnown)
	assert.Empty(t, got.Available)
	assert.Equal(t, []string{"new.com"}, got.Unavailable)
}

func TestClassifyDeduplicatesInFirstSeenOrder(t *testing.T) {
	checker := &mapChecker{statuses: map[string]models.DomainStatus{
		"b.com": models.StatusAvailable,
		"a.com": models.StatusAvailable,
	}}
	c := NewClassifier(checker, nil, nil)

	got := c.Classify(context.Background(),
		[]string{"b.com", "A.com", "B.COM", " ", "a.com"}, nil, 0)

	assert.Equal(t, []string{"b.com", "a.com"}, checker.checked)
	assert.Equal(t, []string{"b.com", "a.com"}, got.Available)
}

func TestClassifyStopsOnCanceledContext(t *testing.T) {
	checker := &mapChecker{}
	c := NewClassifier(checker, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := c.Classify(ctx, []string{"a.com", "b.com"}, nil, 30)

	assert.Empty(t, checker.checked)
	assert.Empty(t, got.Available)
	assert.Empty(t, got.Unavailable)
}

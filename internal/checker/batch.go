package checker

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/berckan/domainfinder/internal/models"
)

// Classifier checks a batch of candidates one at a time, in order.
type Classifier struct {
	checker  DomainChecker
	progress io.Writer
	log      *zap.Logger
}

// NewClassifier creates a Classifier. Progress output goes to progress,
// or nowhere if it is nil.
func NewClassifier(checker DomainChecker, progress io.Writer, log *zap.Logger) *Classifier {
	if progress == nil {
		progress = io.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{checker: checker, progress: progress, log: log}
}

// Classify lower-cases the candidates, drops those longer than maxLength
// characters, de-duplicates the rest in first-seen order and skips any that
// are already known. Each remaining candidate is checked sequentially.
// A maxLength of zero or less disables the length filter.
func (c *Classifier) Classify(ctx context.Context, candidates, known []string, maxLength int) models.BatchResult {
	result := models.BatchResult{
		Available:   []string{},
		Unavailable: []string{},
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, d := range known {
		knownSet[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}

	var fitting []string
	for _, candidate := range candidates {
		d := strings.ToLower(strings.TrimSpace(candidate))
		if d == "" {
			continue
		}
		if maxLength > 0 && utf8.RuneCountInString(d) > maxLength {
			result.Skipped++
			continue
		}
		fitting = append(fitting, d)
	}
	if result.Skipped > 0 {
		c.log.Info("skipped candidates over length limit",
			zap.Int("skipped", result.Skipped),
			zap.Int("max_length", maxLength))
	}

	seen := make(map[string]struct{}, len(fitting))
	var pending []string
	for _, d := range fitting {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		if _, ok := knownSet[d]; ok {
			result.AlreadyKnown++
			continue
		}
		pending = append(pending, d)
	}

	if len(pending) == 0 {
		return result
	}

	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription("Checking domains"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	for _, d := range pending {
		if ctx.Err() != nil {
			break
		}
		bar.Describe(d)

		res := c.checker.Check(ctx, d)
		available, determined := res.IsAvailable()
		switch {
		case !determined:
			c.log.Warn("could not determine availability",
				zap.String("domain", d),
				zap.String("error", res.Error))
			result.Undetermined = append(result.Undetermined, d)
		case available:
			result.Available = append(result.Available, d)
		default:
			result.Unavailable = append(result.Unavailable, d)
		}
		_ = bar.Add(1)
	}

	return result
}

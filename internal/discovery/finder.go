// Package discovery runs the generate, check and cache loop behind the
// interactive prompt.
package discovery

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/berckan/domainfinder/internal/generator"
	"github.com/berckan/domainfinder/internal/models"
)

// Generator produces candidate domain names
type Generator interface {
	Generate(ctx context.Context, req generator.Request) ([]string, error)
}

// Classifier checks a batch of candidates
type Classifier interface {
	Classify(ctx context.Context, candidates, known []string, maxLength int) models.BatchResult
}

// Store loads and saves per-query records
type Store interface {
	Load(query string) *models.QueryRecord
	Save(query string, newAvailable, newUnavailable []string, record *models.QueryRecord) (string, error)
}

// Options tunes the loop
type Options struct {
	CandidateCount   int
	TLD              string
	DefaultMaxLength int
	MaxRounds        int
}

// lengthRank is how many of the longest known domains the cap looks past.
const lengthRank = 20

// Finder drives discovery sessions
type Finder struct {
	gen        Generator
	classifier Classifier
	store      Store
	opts       Options
	log        *zap.Logger
	out        io.Writer
}

// New creates a Finder writing user-facing output to out
func New(gen Generator, classifier Classifier, store Store, opts Options, out io.Writer, log *zap.Logger) *Finder {
	if opts.CandidateCount <= 0 {
		opts.CandidateCount = 20
	}
	if opts.DefaultMaxLength <= 0 {
		opts.DefaultMaxLength = 30
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 10
	}
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Finder{
		gen:        gen,
		classifier: classifier,
		store:      store,
		opts:       opts,
		log:        log,
		out:        out,
	}
}

// Outcome summarizes one pass of rounds for a query
type Outcome struct {
	Query          string
	MaxLength      int
	Rounds         int
	Available      []string
	Unavailable    []string
	TotalAvailable int
	GaveUp         bool
	GenerationErr  error
	SaveErr        error
}

// MaxLength picks the length ceiling for new candidates: the longest known
// domain when fewer than 20 are known, otherwise the 20th-longest.
func MaxLength(known []string, fallback int) int {
	if len(known) == 0 {
		return fallback
	}
	lengths := make([]int, len(known))
	for i, d := range known {
		lengths[i] = utf8.RuneCountInString(d)
	}
	slices.SortFunc(lengths, func(a, b int) int { return b - a })
	if len(lengths) < lengthRank {
		return lengths[0]
	}
	return lengths[lengthRank-1]
}

// Discover generates and checks batches for query until at least one new
// available domain is found, generation fails or MaxRounds is reached.
// Each completed round with results is saved to the store. The returned
// error is non-nil only when ctx is done.
func (f *Finder) Discover(ctx context.Context, query string) (*Outcome, error) {
	return f.discover(ctx, query, f.log)
}

func (f *Finder) discover(ctx context.Context, query string, log *zap.Logger) (*Outcome, error) {
	record := f.store.Load(query)
	known := record.Known()

	out := &Outcome{
		Query:          record.Query,
		MaxLength:      MaxLength(known, f.opts.DefaultMaxLength),
		Available:      []string{},
		Unavailable:    []string{},
		TotalAvailable: len(record.AvailableDomains),
	}
	log.Info("starting discovery",
		zap.Int("known", len(known)),
		zap.Int("max_length", out.MaxLength))

	for round := 1; ; round++ {
		if round > f.opts.MaxRounds {
			out.GaveUp = true
			log.Warn("no available domains found within round limit", zap.Int("rounds", f.opts.MaxRounds))
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		avoid := make([]string, 0, len(known)+len(out.Unavailable))
		avoid = append(avoid, known...)
		avoid = append(avoid, out.Unavailable...)

		fmt.Fprintln(f.out, "Generating domain names...")
		candidates, err := f.gen.Generate(ctx, generator.Request{
			Idea:      query,
			Count:     f.opts.CandidateCount,
			MaxLength: out.MaxLength,
			TLD:       f.opts.TLD,
			Avoid:     avoid,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			var pe *generator.ParseError
			if !errors.As(err, &pe) {
				log.Error("domain generation failed", zap.Int("round", round), zap.Error(err))
				out.GenerationErr = err
				return out, nil
			}
			log.Warn("generator reply had no usable domain list", zap.Int("round", round), zap.Error(err))
			candidates = nil
		}

		exclude := make([]string, 0, len(known)+len(out.Available)+len(out.Unavailable))
		exclude = append(exclude, known...)
		exclude = append(exclude, out.Available...)
		exclude = append(exclude, out.Unavailable...)

		batch := f.classifier.Classify(ctx, candidates, exclude, out.MaxLength)
		if err := ctx.Err(); err != nil {
			// an interrupted batch is never persisted
			return out, err
		}
		out.Rounds = round
		if batch.Skipped > 0 {
			fmt.Fprintf(f.out, "Skipped %d suggestions longer than %d characters.\n", batch.Skipped, out.MaxLength)
		}
		for _, d := range batch.Undetermined {
			fmt.Fprintf(f.out, "Warning: could not determine availability of %s\n", d)
		}

		out.Available = append(out.Available, batch.Available...)
		out.Unavailable = append(out.Unavailable, batch.Unavailable...)

		if len(batch.Available)+len(batch.Unavailable) > 0 {
			path, err := f.store.Save(query, batch.Available, batch.Unavailable, record)
			if err != nil {
				log.Error("could not save results", zap.String("path", path), zap.Error(err))
				out.SaveErr = err
			}
			out.TotalAvailable = len(record.AvailableDomains)
		}

		log.Info("round complete",
			zap.Int("round", round),
			zap.Int("candidates", len(candidates)),
			zap.Int("available", len(batch.Available)),
			zap.Int("unavailable", len(batch.Unavailable)),
			zap.Int("undetermined", len(batch.Undetermined)))

		if len(out.Available) > 0 {
			return out, nil
		}
		fmt.Fprintln(f.out, "\nNo available domains found. Generating new suggestions...")
	}
}

// Report prints the outcome of a discovery pass
func (f *Finder) Report(o *Outcome) {
	if o.GenerationErr != nil {
		fmt.Fprintf(f.out, "\nCould not generate domain names: %v\n", o.GenerationErr)
	}
	if o.GaveUp {
		fmt.Fprintf(f.out, "\nNo available domains found after %d rounds. Giving up for now.\n", f.opts.MaxRounds)
	}

	if len(o.Available) > 0 {
		ranked := slices.Clone(o.Available)
		slices.SortStableFunc(ranked, func(a, b string) int {
			if la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b); la != lb {
				return la - lb
			}
			return strings.Compare(a, b)
		})
		fmt.Fprintln(f.out, "\nAvailable domains:")
		for i, d := range ranked {
			fmt.Fprintf(f.out, "%d. %s\n", i+1, d)
		}
	}

	fmt.Fprintf(f.out, "\nNumber of unavailable domains: %d\n", len(o.Unavailable))
	fmt.Fprintf(f.out, "Total available domains found for this idea: %d\n", o.TotalAvailable)
	if o.SaveErr != nil {
		fmt.Fprintf(f.out, "Warning: results could not be saved: %v\n", o.SaveErr)
	}
}

// Session runs discovery passes for query until the user declines to
// continue. It returns io.EOF if input ends, or the context error.
func (f *Finder) Session(ctx context.Context, query string, in *LineReader) error {
	log := f.log.With(zap.String("session", uuid.NewString()), zap.String("query", query))
	log.Info("session started")
	defer log.Info("session ended")

	for {
		outcome, err := f.discover(ctx, query, log)
		if err != nil {
			return err
		}
		f.Report(outcome)

		fmt.Fprintln(f.out, "\nWould you like to generate more ideas based on these results?")
		fmt.Fprintln(f.out, "Enter 'y' for yes or 'n' for no:")
		fmt.Fprint(f.out, "> ")
		answer, err := in.ReadLine(ctx)
		if err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "n", "no":
			return nil
		}
	}
}

// Run is the interactive loop: read an idea, run a session, repeat until
// the user types quit or input ends.
func (f *Finder) Run(ctx context.Context, in io.Reader) error {
	lines := NewLineReader(in)
	defer lines.Close()

	fmt.Fprintln(f.out, "Welcome to the Domain Name Finder!")
	fmt.Fprintln(f.out, "Share your ideas for domain names, and I'll help you find unique options.")

	for {
		fmt.Fprintln(f.out, "\nWhat's your idea for a domain name? (or type 'quit' to exit):")
		fmt.Fprint(f.out, "> ")
		idea, err := lines.ReadLine(ctx)
		if err == io.EOF {
			fmt.Fprintln(f.out, "\nThank you for using the Domain Name Finder. Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		idea = strings.TrimSpace(idea)
		if strings.EqualFold(idea, "quit") {
			fmt.Fprintln(f.out, "Thank you for using the Domain Name Finder. Goodbye!")
			return nil
		}
		if idea == "" {
			continue
		}

		err = f.Session(ctx, idea, lines)
		if err == io.EOF {
			fmt.Fprintln(f.out, "\nThank you for using the Domain Name Finder. Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

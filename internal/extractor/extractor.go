// Package extractor turns free-text bank notifications into transaction
// candidates. Input is split into segments and each segment is offered to an
// ordered chain of matchers; the first that recognizes it wins.
package extractor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/models"
)

// DefaultWorkers bounds parallel segment matching when none is configured.
const DefaultWorkers = 4

// Result is the outcome of one extraction. Candidates and Unparsed keep the
// input segment order.
type Result struct {
	Candidates []models.Candidate
	Unparsed   []string
	Total      int
	Skipped    int
}

// Extractor matches segments against a Registry. It holds no per-call state
// and is safe for concurrent use.
type Extractor struct {
	registry *Registry
	workers  int
	logger   logging.Logger
}

// New creates an Extractor. A nil registry selects DefaultRegistry.
func New(registry *Registry, workers int, logger logging.Logger) *Extractor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if workers < 1 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Extractor{registry: registry, workers: workers, logger: logger}
}

// Registry returns the registry backing this extractor.
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// Extract splits raw into segments and matches each of them. Unrecognized
// segments are reported in Unparsed, never as an error; the only error is
// the context's.
func (e *Extractor) Extract(ctx context.Context, raw string, bank models.Bank) (Result, error) {
	return e.ExtractSegments(ctx, Split(raw), bank)
}

// ExtractSegments matches already split segments, in parallel.
func (e *Extractor) ExtractSegments(ctx context.Context, segments []string, bank models.Bank) (Result, error) {
	chain := e.registry.Chain(bank)
	matched := make([]*models.Candidate, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, segment := range segments {
		i, segment := i, segment
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if cand, ok := matchSegment(chain, segment); ok {
				cand.Raw = models.RawText{Text: segment, Bank: bank}
				matched[i] = &cand
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Total: len(segments)}
	for i, cand := range matched {
		if cand == nil {
			result.Unparsed = append(result.Unparsed, segments[i])
			e.logger.Debug("Segment not recognized",
				logging.F(logging.FieldBank, bank),
				logging.F(logging.FieldSegment, segments[i]))
			continue
		}
		result.Candidates = append(result.Candidates, *cand)
		e.logger.Debug("Segment matched",
			logging.F(logging.FieldBank, bank),
			logging.F(logging.FieldMatcher, cand.Matcher))
	}
	result.Skipped = len(result.Unparsed)
	return result, nil
}

func matchSegment(chain []Matcher, segment string) (cand models.Candidate, ok bool) {
	defer func() {
		// A misbehaving registered matcher must not take the batch down.
		if r := recover(); r != nil {
			cand, ok = models.Candidate{}, false
		}
	}()
	for _, m := range chain {
		if c, found := m.TryMatch(segment); found && c.Direction.Valid() && c.AmountMinor > 0 {
			if c.Matcher == "" {
				c.Matcher = m.Name()
			}
			return c, true
		}
	}
	return models.Candidate{}, false
}

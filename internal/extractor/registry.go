package extractor

import (
	"fmt"
	"sync"

	"fjacquet/sms-ledger/internal/config"
	"fjacquet/sms-ledger/internal/models"
)

// Registry holds the matchers per bank plus the bank-agnostic set. It is
// safe for concurrent use; Chain returns a snapshot.
type Registry struct {
	mu       sync.RWMutex
	banks    map[models.Bank][]Matcher
	agnostic []Matcher
	fallback Matcher
}

// NewRegistry returns a registry with no bank families and only the keyword
// fallback.
func NewRegistry() *Registry {
	return &Registry{
		banks:    make(map[models.Bank][]Matcher),
		fallback: KeywordFallback(),
	}
}

// DefaultRegistry returns a registry with every built-in family.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for bank, matchers := range BankMatchers() {
		r.Register(bank, matchers...)
	}
	r.Register(models.BankOther, AgnosticMatchers()...)
	return r
}

// Register appends matchers to bank's family list. Matchers registered for
// Other join the agnostic set, ahead of the keyword fallback.
func (r *Registry) Register(bank models.Bank, matchers ...Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bank == models.BankOther || bank == "" {
		r.agnostic = append(r.agnostic, matchers...)
		return
	}
	r.banks[bank] = append(r.banks[bank], matchers...)
}

// RegisterPatterns compiles configured patterns and registers each under its
// bank. An unknown bank name registers into the agnostic set.
func (r *Registry) RegisterPatterns(patterns []config.PatternConfig) error {
	for _, p := range patterns {
		m, err := NewPatternMatcher(p.Name, p.Regex, models.Direction(p.Direction))
		if err != nil {
			return fmt.Errorf("failed to register pattern: %w", err)
		}
		r.Register(models.ParseBank(p.Bank), m)
	}
	return nil
}

// Chain returns the matchers to try for a segment submitted under bank: the
// hinted bank's families, then every other bank's families, then the
// agnostic set and finally the keyword fallback. Other skips straight to
// the agnostic set.
func (r *Registry) Chain(bank models.Bank) []Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []Matcher
	if bank != models.BankOther {
		chain = append(chain, r.banks[bank]...)
		for _, b := range models.Banks {
			if b == bank {
				continue
			}
			chain = append(chain, r.banks[b]...)
		}
	}
	chain = append(chain, r.agnostic...)
	if r.fallback != nil {
		chain = append(chain, r.fallback)
	}
	return chain
}

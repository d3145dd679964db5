package failurelearn

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// Synthesizer turns a failure-category crossing (decided by the caller
// against a pattern's bounded recent-failure ring, per spec §4.6) into
// an AntiPattern, keeping the primary map and the
// (sourcePatternId, category) secondary index bisimilar: every entry
// reachable from one is reachable from the other, per spec §9's
// principal invariant for this subsystem.
//
// Grounded on the teacher's LearningEngine (internal/error_recovery/learning.go):
// same idea of tracking repeated outcomes per fingerprint before
// promoting them into a reusable artifact, generalized from
// success-fingerprint-to-rule into failure-fingerprint-to-anti-pattern.
type Synthesizer struct {
	mu  sync.RWMutex
	ttl time.Duration

	byID      map[string]*patternmodel.AntiPattern
	byKey     map[patternmodel.AntiPatternKey]string // key -> id, the secondary index
	listeners []patternmodel.Listener
}

func NewSynthesizer(ttl time.Duration) *Synthesizer {
	return &Synthesizer{
		ttl:   ttl,
		byID:  make(map[string]*patternmodel.AntiPattern),
		byKey: make(map[patternmodel.AntiPatternKey]string),
	}
}

func (s *Synthesizer) Subscribe(l patternmodel.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Synthesize creates or refreshes the AntiPattern for
// (patternID, category). The caller has already decided the ring
// threshold for this category was crossed; this only maintains the
// bisimilar map/index pair and fires the creation event on first mint.
func (s *Synthesizer) Synthesize(patternID, domain, url string, category Category, now time.Time) *patternmodel.AntiPattern {
	key := patternmodel.AntiPatternKey{SourcePatternID: patternID, FailureCategory: string(category)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[key]; ok {
		ap := s.byID[id]
		ap.FailureCount++
		ap.LastSeen = now
		ap.ExpiresAt = now.Add(s.ttl)
		addDomain(ap, domain)
		return ap
	}

	ap := &patternmodel.AntiPattern{
		ID:              uuid.NewString(),
		SourcePatternID: patternID,
		FailureCategory: string(category),
		Domains:         []string{domain},
		URLShape:        shapePattern(url),
		FailureCount:    1,
		FirstSeen:       now,
		LastSeen:        now,
		ExpiresAt:       now.Add(s.ttl),
	}
	s.byID[ap.ID] = ap
	s.byKey[key] = ap.ID

	s.emit(patternmodel.Event{Type: patternmodel.EventAntiPatternCreated, PatternID: patternID, AntiPattern: ap, Domain: domain})
	return ap
}

// ActiveFor returns the still-active anti-patterns synthesized from
// patternID, across all failure categories.
func (s *Synthesizer) ActiveFor(patternID string, now time.Time) []*patternmodel.AntiPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*patternmodel.AntiPattern
	for _, ap := range s.byID {
		if ap.SourcePatternID == patternID && ap.Active(now) {
			out = append(out, ap)
		}
	}
	return out
}

// Sweep evicts expired anti-patterns from both the primary map and the
// secondary index, preserving bisimilarity.
func (s *Synthesizer) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ap := range s.byID {
		if !ap.Active(now) {
			delete(s.byID, id)
			delete(s.byKey, ap.Key())
			removed++
		}
	}
	return removed
}

func (s *Synthesizer) emit(e patternmodel.Event) {
	for _, l := range s.listeners {
		safeInvoke(l, e)
	}
}

func safeInvoke(l patternmodel.Listener, e patternmodel.Event) {
	defer func() { recover() }()
	l(e)
}

func addDomain(ap *patternmodel.AntiPattern, domain string) {
	for _, d := range ap.Domains {
		if d == domain {
			return
		}
	}
	ap.Domains = append(ap.Domains, domain)
}

// shapePattern collapses a concrete URL into a regexp2-dialect pattern of
// same-shaped URLs, by replacing digit runs (ids, timestamps) with \d+.
// This keeps the anti-pattern scoped to a URL "shape" rather than one
// exact address.
func shapePattern(url string) string {
	var b []byte
	inDigitRun := false
	for i := 0; i < len(url); i++ {
		c := url[i]
		if c >= '0' && c <= '9' {
			if !inDigitRun {
				b = append(b, []byte(`\d+`)...)
				inDigitRun = true
			}
			continue
		}
		inDigitRun = false
		b = append(b, escapeRegexMeta(c)...)
	}
	return fmt.Sprintf("^%s$", string(b))
}

// escapeRegexMeta escapes a single byte that is meaningful to regexp2 so
// the generated shape matches the literal character, not the operator.
func escapeRegexMeta(c byte) []byte {
	switch c {
	case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
		return []byte{'\\', c}
	default:
		return []byte{c}
	}
}

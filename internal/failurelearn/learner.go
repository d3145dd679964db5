package failurelearn

import (
	"net/http"
	"time"

	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// Learner is C6: the façade that ties classification, recent-failure
// bookkeeping, anti-pattern synthesis, health tracking, and retry wait
// calculation together for one pattern/domain/url outcome at a time.
type Learner struct {
	synth     *Synthesizer
	health    *HealthTracker
	waiter    *Waiter
	ringCap   int
	threshold int
}

func NewLearner(ringCap, antiPatternThreshold int, antiPatternTTL time.Duration, maxBackoff time.Duration, breakerMaxFailures uint32, breakerOpenTimeout time.Duration) *Learner {
	return &Learner{
		synth:     NewSynthesizer(antiPatternTTL),
		health:    NewHealthTracker(breakerMaxFailures, breakerOpenTimeout),
		waiter:    NewWaiter(maxBackoff),
		ringCap:   ringCap,
		threshold: antiPatternThreshold,
	}
}

func (l *Learner) Subscribe(listener patternmodel.Listener) {
	l.synth.Subscribe(listener)
}

// Result is what RecordFailure hands back to the caller driving retries.
type Result struct {
	Classification Classification
	AntiPattern    *patternmodel.AntiPattern
	Wait           time.Duration
	Healthy        bool
}

// RecordFailure classifies one failed attempt against pattern, updates
// its ring/tally bookkeeping, synthesizes an anti-pattern if warranted,
// and reports the wait to use before attempt+1.
func (l *Learner) RecordFailure(pattern *patternmodel.LearnedPattern, domain, url string, outcome Outcome, attempt int, now time.Time) Result {
	cls := Classify(outcome)

	pattern.Metrics.RecordFailure(string(cls.Category))
	pattern.Metrics.PushRecentFailure(l.ringCap, patternmodel.RecordedFailure{
		Category: string(cls.Category),
		Reason:   outcome.ErrorMessage,
		URL:      url,
		At:       now,
	})

	l.health.RecordOutcome(pattern.ID, false)

	var ap *patternmodel.AntiPattern
	if cls.ShouldCreateAntiPattern && pattern.Metrics.CountRecentByCategory(string(cls.Category)) >= l.threshold {
		ap = l.synth.Synthesize(pattern.ID, domain, url, cls.Category, now)
		idx := indexOf(pattern.Metrics.ActiveAntiPatterns, ap.ID)
		if idx < 0 {
			pattern.Metrics.ActiveAntiPatterns = append(pattern.Metrics.ActiveAntiPatterns, ap.ID)
		}
	}

	var header http.Header
	if outcome.Header != nil {
		header = outcome.Header
	}
	wait := l.waiter.Wait(cls.RetryStrategy, attempt, header, now)

	return Result{
		Classification: cls,
		AntiPattern:    ap,
		Wait:           wait,
		Healthy:        l.health.IsHealthy(pattern.ID),
	}
}

// RecordSuccess feeds a successful attempt back into both the pattern's
// metrics and the pattern's breaker.
func (l *Learner) RecordSuccess(pattern *patternmodel.LearnedPattern, domain string, responseTimeMs float64) {
	pattern.Metrics.RecordSuccess(domain, responseTimeMs)
	l.health.RecordOutcome(pattern.ID, true)
}

// IsHealthy reports the current circuit state for patternID without
// recording a new outcome.
func (l *Learner) IsHealthy(patternID string) bool {
	return l.health.IsHealthy(patternID)
}

// ActiveAntiPatterns returns the still-active anti-patterns synthesized
// from patternID.
func (l *Learner) ActiveAntiPatterns(patternID string, now time.Time) []*patternmodel.AntiPattern {
	return l.synth.ActiveFor(patternID, now)
}

// Sweep evicts expired anti-patterns; callers run this on a timer.
func (l *Learner) Sweep(now time.Time) int {
	return l.synth.Sweep(now)
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

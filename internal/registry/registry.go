// Package registry implements C2: the in-memory pattern registry with
// domain and template-type indexes, bootstrap seeding, persistence
// through C1, listener fan-out, and metric updates.
package registry

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uzzalhcse/patterncore/internal/logger"
	"github.com/uzzalhcse/patterncore/internal/matcher"
	"github.com/uzzalhcse/patterncore/internal/store"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// Config holds the registry's tunables, mirroring config.RegistryConfig.
type Config struct {
	ArchiveAfterDays int
	ConfidenceFloor  float64
	DecayEpsilon     float64
}

// Registry is the in-memory map of learned patterns plus its two
// secondary indexes, all guarded by one mutex (spec §5: "one
// sync.RWMutex" per component, not per index).
type Registry struct {
	mu  sync.RWMutex
	cfg Config

	byID  map[string]*patternmodel.LearnedPattern
	ix    *index
	store *store.Store

	strategyMap map[string]patternmodel.TemplateType

	listenersMu sync.Mutex
	listeners   map[int]patternmodel.Listener
	nextListenerID int
}

func New(cfg Config, persistentStore *store.Store) *Registry {
	return &Registry{
		cfg:         cfg,
		byID:        make(map[string]*patternmodel.LearnedPattern),
		ix:          newIndex(),
		store:       persistentStore,
		strategyMap: make(map[string]patternmodel.TemplateType),
		listeners:   make(map[int]patternmodel.Listener),
	}
}

// SetStrategy registers an explicit template-type override for domain,
// consulted before learnFromExtraction's URL-shape heuristics.
func (r *Registry) SetStrategy(domain string, t patternmodel.TemplateType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategyMap[domain] = t
}

// Initialize loads persisted patterns via C1; if none were persisted,
// it seeds the eight bootstrap patterns and persists them immediately.
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob, err := r.store.Load()
	if err != nil {
		return err
	}

	var loaded []*patternmodel.LearnedPattern
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &loaded); err != nil {
			return err
		}
	}

	if len(loaded) == 0 {
		loaded = bootstrapPatterns()
		logger.Info("registry: seeded bootstrap patterns", zap.Int("count", len(loaded)))
	}

	for _, p := range loaded {
		r.byID[p.ID] = p
		r.ix.add(p)
	}

	return r.persistLocked()
}

func (r *Registry) GetPattern(id string) (*patternmodel.LearnedPattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

func (r *Registry) GetPatternsForDomain(domain string) []*patternmodel.LearnedPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.ix.idsForDomain(domain))
}

func (r *Registry) GetPatternsByType(t patternmodel.TemplateType) []*patternmodel.LearnedPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.ix.idsForType(t))
}

func (r *Registry) collect(ids map[string]struct{}) []*patternmodel.LearnedPattern {
	out := make([]*patternmodel.LearnedPattern, 0, len(ids))
	for id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// MatchResult is findMatchingPatterns' per-candidate output, per spec §4.2.
type MatchResult struct {
	Pattern            *patternmodel.LearnedPattern
	Confidence         float64
	ExtractedVariables map[string]string
	APIEndpoint        string
	MatchReason        string // domain-index | cross-domain | scan-all
}

// FindMatchingPatterns implements the two-tier match algorithm: scan
// the domain index for the URL's hostname first; only if nothing
// matches there, scan the remaining patterns for a cross-domain hit.
func (r *Registry) FindMatchingPatterns(rawURL string) []MatchResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hostname := hostOf(rawURL)
	if hostname == "" {
		return r.scan(r.allIDs(), rawURL, "scan-all")
	}

	tierOne := r.scan(r.ix.idsForDomain(hostname), rawURL, "domain-index")
	if len(tierOne) > 0 {
		return tierOne
	}

	remaining := make(map[string]struct{})
	domainIDs := r.ix.idsForDomain(hostname)
	for id := range r.byID {
		if _, excluded := domainIDs[id]; !excluded {
			remaining[id] = struct{}{}
		}
	}
	return r.scan(remaining, rawURL, "cross-domain")
}

func (r *Registry) allIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r.byID))
	for id := range r.byID {
		ids[id] = struct{}{}
	}
	return ids
}

func (r *Registry) scan(ids map[string]struct{}, rawURL, reason string) []MatchResult {
	var results []MatchResult
	for id := range ids {
		p, ok := r.byID[id]
		if !ok {
			continue
		}
		m, ok := matcher.Extract(rawURL, p)
		if !ok {
			continue
		}
		results = append(results, MatchResult{
			Pattern:            p,
			Confidence:         p.Metrics.Confidence,
			ExtractedVariables: m.Variables,
			APIEndpoint:        m.Endpoint,
			MatchReason:        reason,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Confidence > results[j].Confidence })
	return results
}

// LearnPattern registers an already-constructed pattern (used by
// discovery, transfer, and form-learning), indexes and persists it, and
// emits pattern_learned.
func (r *Registry) LearnPattern(p *patternmodel.LearnedPattern) {
	r.mu.Lock()
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	r.byID[p.ID] = p
	r.ix.add(p)
	r.persistLocked()
	r.mu.Unlock()

	r.emit(patternmodel.Event{Type: patternmodel.EventPatternLearned, PatternID: p.ID, Pattern: p})
}

// UpdatePatternMetrics applies a success/failure outcome to pattern id,
// emitting pattern_applied and, when confidence moves by more than the
// configured epsilon, confidence_decayed.
func (r *Registry) UpdatePatternMetrics(id string, success bool, domain string, responseTimeMs float64, reason string) error {
	r.mu.Lock()
	p, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return patternmodel.ErrPatternNotFound
	}

	beforeDomains := len(p.Metrics.Domains)
	before, after, decayed := applyMetricUpdate(p, success, domain, responseTimeMs, reason, r.cfg.DecayEpsilon)
	if len(p.Metrics.Domains) != beforeDomains {
		r.ix.addDomain(domain, p.ID)
	}
	p.UpdatedAt = time.Now()
	r.persistLocked()
	r.mu.Unlock()

	r.emit(patternmodel.Event{Type: patternmodel.EventPatternApplied, PatternID: id, Pattern: p, Domain: domain})
	if decayed {
		r.emit(patternmodel.Event{Type: patternmodel.EventConfidenceDecayed, PatternID: id, Old: before, New: after})
	}
	return nil
}

// AdjustConfidence multiplies pattern id's confidence by factor, clamped
// to [0, 1], under the registry's own lock and persists the result —
// the only safe way to mutate a pattern's metrics from outside this
// package, since GetPattern's read lock only covers the lookup itself
// and returns a pointer into the shared map.
func (r *Registry) AdjustConfidence(id string, factor float64) (float64, bool) {
	r.mu.Lock()
	p, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return 0, false
	}
	c := p.Metrics.Confidence * factor
	if c > 1.0 {
		c = 1.0
	}
	if c < 0.0 {
		c = 0.0
	}
	p.Metrics.Confidence = c
	p.UpdatedAt = time.Now()
	r.persistLocked()
	r.mu.Unlock()
	return c, true
}

// LearnFromExtraction implements spec §4.2's learning path: if a
// pattern already matches event.SourceURL, only its metrics are
// updated; otherwise a new pattern is inferred and learned.
func (r *Registry) LearnFromExtraction(event ExtractionEvent) *patternmodel.LearnedPattern {
	if existing := r.FindMatchingPatterns(event.SourceURL); len(existing) > 0 {
		_ = r.UpdatePatternMetrics(existing[0].Pattern.ID, true, event.Domain, 0, "")
		return existing[0].Pattern
	}

	r.mu.RLock()
	strategy := make(map[string]patternmodel.TemplateType, len(r.strategyMap))
	for k, v := range r.strategyMap {
		strategy[k] = v
	}
	r.mu.RUnlock()

	templateType := inferTemplateType(strategy, event.SourceURL, event.APIURL, event.Domain)
	mapping := inferContentMapping(event.ResponseRaw, event.Title, event.Description, event.Body)

	now := time.Now()
	p := &patternmodel.LearnedPattern{
		ID:               patternmodel.ProvenanceLearned + uuid.NewString(),
		TemplateType:      templateType,
		URLPatterns:       []string{escapeToExactURLPattern(event.SourceURL)},
		EndpointTemplate:  event.APIURL,
		ResponseFormat:    patternmodel.ResponseJSON,
		ContentMapping:    mapping,
		Metrics: patternmodel.ExtendedMetrics{
			Metrics: patternmodel.Metrics{Confidence: 0.5, Domains: []string{event.Domain}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.LearnPattern(p)
	return p
}

// Subscribe registers listener and returns an unsubscribe function.
func (r *Registry) Subscribe(listener patternmodel.Listener) func() {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	id := r.nextListenerID
	r.nextListenerID++
	r.listeners[id] = listener
	return func() {
		r.listenersMu.Lock()
		defer r.listenersMu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *Registry) emit(e patternmodel.Event) {
	r.listenersMu.Lock()
	snapshot := make([]patternmodel.Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		snapshot = append(snapshot, l)
	}
	r.listenersMu.Unlock()

	for _, l := range snapshot {
		safeInvoke(l, e)
	}
}

func safeInvoke(l patternmodel.Listener, e patternmodel.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("registry: listener panicked, other subscribers still notified")
		}
	}()
	l(e)
}

// Cleanup removes patterns whose lastSuccess (or createdAt if never
// used) predates the archive threshold, or whose confidence is below
// the floor, emitting pattern_archived for each.
func (r *Registry) Cleanup() []string {
	r.mu.Lock()
	threshold := time.Now().AddDate(0, 0, -r.cfg.ArchiveAfterDays)

	var archived []*patternmodel.LearnedPattern
	for _, p := range r.byID {
		reference := p.Metrics.LastSuccess
		if reference.IsZero() {
			reference = p.CreatedAt
		}
		if reference.Before(threshold) || p.Metrics.Confidence < r.cfg.ConfidenceFloor {
			archived = append(archived, p)
		}
	}

	var ids []string
	for _, p := range archived {
		delete(r.byID, p.ID)
		r.ix.remove(p)
		ids = append(ids, p.ID)
	}
	r.persistLocked()
	r.mu.Unlock()

	for _, p := range archived {
		r.emit(patternmodel.Event{Type: patternmodel.EventPatternArchived, PatternID: p.ID, Pattern: p})
	}
	return ids
}

// Flush forces any pending persisted write to disk.
func (r *Registry) Flush() error {
	return r.store.Flush()
}

func (r *Registry) persistLocked() error {
	all := make([]*patternmodel.LearnedPattern, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	blob, err := json.Marshal(all)
	if err != nil {
		return err
	}
	r.store.Save(blob)
	return nil
}

// escapeToExactURLPattern builds a regex matching exactly sourceURL,
// for freshly learned single-URL patterns before any generalization
// (cross-site transfer later replaces this with a shape-based pattern).
func escapeToExactURLPattern(sourceURL string) string {
	var b []byte
	for i := 0; i < len(sourceURL); i++ {
		b = append(b, escapeRegexMetaByte(sourceURL[i])...)
	}
	return "^" + string(b) + "$"
}

func escapeRegexMetaByte(c byte) []byte {
	switch c {
	case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
		return []byte{'\\', c}
	default:
		return []byte{c}
	}
}

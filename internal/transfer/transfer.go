// Package transfer scores similarity between a learned pattern and a
// candidate target domain, and clones patterns across domains with
// confidence decay when that score clears a threshold.
package transfer

import (
	"time"

	"github.com/uzzalhcse/patterncore/internal/registry"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

const (
	defaultMinSimilarity   = 0.3
	defaultConfidenceDecay = 0.5
	successBoost           = 1.3
	failurePenalty         = 0.6
	autoTransferCandidates = 3
)

// Result is the structured outcome of a transfer attempt, matching the
// shape callers need whether or not the transfer succeeded.
type Result struct {
	Success         bool
	SimilarityScore float64
	Reason          string
	Err             error
	Pattern         *patternmodel.LearnedPattern
}

// Machine performs similarity scoring and pattern cloning against a
// registry of learned patterns.
type Machine struct {
	reg             *registry.Registry
	minSimilarity   float64
	confidenceDecay float64
}

// New builds a Machine with the given thresholds; zero values fall back
// to the spec defaults (minSimilarity 0.3, confidenceDecay 0.5).
func New(reg *registry.Registry, minSimilarity, confidenceDecay float64) *Machine {
	if minSimilarity <= 0 {
		minSimilarity = defaultMinSimilarity
	}
	if confidenceDecay <= 0 {
		confidenceDecay = defaultConfidenceDecay
	}
	return &Machine{reg: reg, minSimilarity: minSimilarity, confidenceDecay: confidenceDecay}
}

// Transfer attempts to clone source onto targetDomain, per spec §4.4.
func (m *Machine) Transfer(source *patternmodel.LearnedPattern, targetDomain string) Result {
	if existing := m.reg.GetPatternsForDomain(targetDomain); len(existing) > 0 {
		reason := "target domain already indexed"
		return Result{Success: false, Reason: reason, Err: &patternmodel.TransferRejected{Reason: reason}}
	}

	score := Similarity(source, targetDomain)
	if score.Total < m.minSimilarity {
		reason := "similarity below threshold"
		return Result{
			Success:         false,
			SimilarityScore: score.Total,
			Reason:          reason,
			Err:             &patternmodel.TransferRejected{SimilarityScore: score.Total, Reason: reason},
		}
	}

	clone := source.Clone()
	clone.ID = patternmodel.ProvenanceTransfer + targetDomain + ":" + baseID(source.ID)
	clone.URLPatterns = []string{derivedURLPattern(source, targetDomain)}
	clone.Metrics.Domains = []string{targetDomain}
	clone.Metrics.SuccessCount = 0
	clone.Metrics.FailureCount = 0
	clone.Metrics.AvgResponseTimeMs = 0
	clone.Metrics.RecentFailures = nil
	clone.Metrics.FailuresByCategory = nil
	clone.Metrics.ActiveAntiPatterns = nil
	clone.Metrics.LastSuccess = time.Time{}
	clone.Metrics.LastFailure = time.Time{}
	clone.Metrics.LastFailureReason = ""
	clone.Metrics.Confidence = source.Metrics.Confidence * m.confidenceDecay

	m.reg.LearnPattern(clone)

	return Result{Success: true, SimilarityScore: score.Total, Pattern: clone}
}

// RecordOutcome applies the normal registry metric update for a
// transferred pattern, then additionally boosts or penalizes confidence
// per spec §4.4's outcome-tracking rule.
func (m *Machine) RecordOutcome(patternID string, success bool, domain string, responseTimeMs float64, failureReason string) error {
	if err := m.reg.UpdatePatternMetrics(patternID, success, domain, responseTimeMs, failureReason); err != nil {
		return err
	}
	factor := failurePenalty
	if success {
		factor = successBoost
	}
	m.reg.AdjustConfidence(patternID, factor)
	return nil
}

// AutoTransfer scores source against every candidate domain, attempts a
// transfer against the top three by similarity, and stops at the first
// successful transfer, per spec §4.4.
func (m *Machine) AutoTransfer(source *patternmodel.LearnedPattern, candidateDomains []string) Result {
	type scored struct {
		domain string
		score  float64
	}

	ranked := make([]scored, 0, len(candidateDomains))
	for _, d := range candidateDomains {
		ranked = append(ranked, scored{domain: d, score: Similarity(source, d).Total})
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	limit := autoTransferCandidates
	if len(ranked) < limit {
		limit = len(ranked)
	}

	var last Result
	for i := 0; i < limit; i++ {
		last = m.Transfer(source, ranked[i].domain)
		if last.Success {
			return last
		}
	}
	return last
}

func baseID(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[i+1:]
		}
	}
	return id
}

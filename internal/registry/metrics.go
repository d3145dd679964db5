package registry

import (
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

// applyMetricUpdate mutates pattern's metrics per spec §4.2 and reports
// whether confidence moved by more than decayEpsilon, which callers use
// to decide whether to emit confidence_decayed.
func applyMetricUpdate(p *patternmodel.LearnedPattern, success bool, domain string, responseTimeMs float64, reason string, decayEpsilon float64) (before, after float64, decayed bool) {
	before = p.Metrics.Confidence

	if success {
		p.Metrics.RecordSuccess(domain, responseTimeMs)
	} else {
		p.Metrics.AddDomain(domain)
		p.Metrics.RecordFailure(reason)
	}

	after = p.Metrics.Confidence
	decayed = after < before && (before-after) > decayEpsilon
	return before, after, decayed
}

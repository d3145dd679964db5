package patternmodel

import "time"

// AntiPattern is a negative rule derived from repeated failures of a
// source pattern against a particular failure category. Anti-patterns are
// looked up by source pattern ID (failurelearn's Synthesizer.ActiveFor);
// no code in this module matches URLShape against a URL.
type AntiPattern struct {
	ID              string    `json:"id"`
	SourcePatternID string    `json:"sourcePatternId"`
	FailureCategory string    `json:"failureCategory"`
	Domains         []string  `json:"domains"`
	URLShape        string    `json:"urlShape"` // regexp2-dialect shape of the failing URL; stored, not evaluated
	FailureCount    int       `json:"failureCount"`
	FirstSeen       time.Time `json:"firstSeen"`
	LastSeen        time.Time `json:"lastSeen"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// Active reports whether the anti-pattern has not yet expired.
func (a *AntiPattern) Active(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}

// AntiPatternKey is the secondary index key: (sourcePatternId, category).
type AntiPatternKey struct {
	SourcePatternID string
	FailureCategory string
}

func (a *AntiPattern) Key() AntiPatternKey {
	return AntiPatternKey{SourcePatternID: a.SourcePatternID, FailureCategory: a.FailureCategory}
}

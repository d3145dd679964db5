package formlearn

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

var (
	csrfNameRe      = regexp.MustCompile(`(?i)csrf|token|authenticity`)
	nonceNameRe     = regexp.MustCompile(`(?i)nonce`)
	userSessionRe   = regexp.MustCompile(`(?i)user|session`)
	uuidValueRe     = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	timestampValRe  = regexp.MustCompile(`^\d{10,13}$`)
)

// observedValues tracks, per field name, the distinct values seen across
// multiple captures of the same form; cardinality > 1 marks the field
// dynamic per spec §4.7 even when its name gives no hint.
type observedValues map[string]map[string]struct{}

func newObservedValues() observedValues { return make(observedValues) }

func (o observedValues) record(name, value string) {
	set, ok := o[name]
	if !ok {
		set = make(map[string]struct{})
		o[name] = set
	}
	set[value] = struct{}{}
}

func (o observedValues) cardinality(name string) int {
	return len(o[name])
}

// ClassifyDynamicField decides whether a field is dynamic and, if so, what
// kind and extraction strategy apply, per spec §4.7.
func ClassifyDynamicField(f DetectedField, seen observedValues) (patternmodel.DynamicField, bool) {
	switch {
	case csrfNameRe.MatchString(f.Name):
		return patternmodel.DynamicField{
			FieldName: f.Name,
			Type:      patternmodel.DynamicCSRFToken,
			Strategy:  patternmodel.StrategyDOM,
			Selector:  csrfSelector(f),
		}, true
	case nonceNameRe.MatchString(f.Name):
		return patternmodel.DynamicField{FieldName: f.Name, Type: patternmodel.DynamicNonce, Strategy: patternmodel.StrategyComputed}, true
	case userSessionRe.MatchString(f.Name) && strings.Contains(strings.ToLower(f.Name), "session"):
		return patternmodel.DynamicField{FieldName: f.Name, Type: patternmodel.DynamicSessionID, Strategy: patternmodel.StrategyCookie}, true
	case userSessionRe.MatchString(f.Name):
		return patternmodel.DynamicField{FieldName: f.Name, Type: patternmodel.DynamicUserID, Strategy: patternmodel.StrategyCookie}, true
	case uuidValueRe.MatchString(f.Value):
		return patternmodel.DynamicField{FieldName: f.Name, Type: patternmodel.DynamicUUID, Strategy: patternmodel.StrategyComputed}, true
	case timestampValRe.MatchString(f.Value):
		return patternmodel.DynamicField{FieldName: f.Name, Type: patternmodel.DynamicTimestamp, Strategy: patternmodel.StrategyComputed}, true
	case seen.cardinality(f.Name) > 1:
		return patternmodel.DynamicField{FieldName: f.Name, Type: patternmodel.DynamicCustom, Strategy: patternmodel.StrategyDOM, Selector: f.Selector}, true
	default:
		return patternmodel.DynamicField{}, false
	}
}

func csrfSelector(f DetectedField) string {
	if f.Selector != "" {
		return f.Selector
	}
	return `meta[name="csrf-token"]`
}

// ExtractDynamicValue computes a fresh value for a dynamic field at
// submit time, for the UUID and timestamp types (DOM/cookie strategies
// are resolved by the caller against the browser page or cookie jar).
// A nonce field, although classified as computed, gets no value here.
func ExtractDynamicValue(field patternmodel.DynamicField, now time.Time) (string, bool) {
	switch field.Type {
	case patternmodel.DynamicUUID:
		return uuid.NewString(), true
	case patternmodel.DynamicTimestamp:
		return strconv.FormatInt(now.UnixMilli(), 10), true
	default:
		return "", false
	}
}

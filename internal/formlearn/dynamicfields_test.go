package formlearn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uzzalhcse/patterncore/pkg/patternmodel"
)

func TestClassifyDynamicFieldByName(t *testing.T) {
	cases := []struct {
		name     string
		field    DetectedField
		wantType patternmodel.DynamicFieldType
	}{
		{"csrf token", DetectedField{Name: "csrf_token", Selector: "#csrf"}, patternmodel.DynamicCSRFToken},
		{"nonce", DetectedField{Name: "nonce"}, patternmodel.DynamicNonce},
		{"session id", DetectedField{Name: "session_id"}, patternmodel.DynamicSessionID},
		{"user id", DetectedField{Name: "user_id"}, patternmodel.DynamicUserID},
	}
	seen := newObservedValues()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			df, ok := ClassifyDynamicField(tc.field, seen)
			assert.True(t, ok)
			assert.Equal(t, tc.wantType, df.Type)
		})
	}
}

func TestClassifyDynamicFieldByValueShape(t *testing.T) {
	uuidField := DetectedField{Name: "request_id", Value: "550e8400-e29b-41d4-a716-446655440000"}
	df, ok := ClassifyDynamicField(uuidField, newObservedValues())
	assert.True(t, ok)
	assert.Equal(t, patternmodel.DynamicUUID, df.Type)

	tsField := DetectedField{Name: "created", Value: "1712345678901"}
	df, ok = ClassifyDynamicField(tsField, newObservedValues())
	assert.True(t, ok)
	assert.Equal(t, patternmodel.DynamicTimestamp, df.Type)
}

func TestClassifyDynamicFieldByCardinality(t *testing.T) {
	seen := newObservedValues()
	seen.record("color", "red")
	seen.record("color", "blue")

	df, ok := ClassifyDynamicField(DetectedField{Name: "color", Selector: "#color"}, seen)
	assert.True(t, ok)
	assert.Equal(t, patternmodel.DynamicCustom, df.Type)
}

func TestClassifyDynamicFieldStaticFieldIsNotDynamic(t *testing.T) {
	seen := newObservedValues()
	seen.record("plan", "basic")

	_, ok := ClassifyDynamicField(DetectedField{Name: "plan", Value: "basic"}, seen)
	assert.False(t, ok)
}

func TestExtractDynamicValue(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)

	ts, ok := ExtractDynamicValue(patternmodel.DynamicField{Type: patternmodel.DynamicTimestamp}, now)
	assert.True(t, ok)
	assert.Equal(t, "1785499200000", ts)

	id, ok := ExtractDynamicValue(patternmodel.DynamicField{Type: patternmodel.DynamicUUID}, now)
	assert.True(t, ok)
	assert.Len(t, id, 36)

	_, ok = ExtractDynamicValue(patternmodel.DynamicField{Type: patternmodel.DynamicCSRFToken}, now)
	assert.False(t, ok)
}

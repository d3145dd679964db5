package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFieldByCategorySpanishRequirements(t *testing.T) {
	data := []byte(`{"requisitos": ["passport", "proof of address"]}`)

	v, ok := ExtractFieldByCategory(data, CategoryRequirements, "es")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"passport", "proof of address"}, v)
}

func TestExtractFieldByCategoryFallsBackToEnglishAlias(t *testing.T) {
	data := []byte(`{"requirements": "must be 18+"}`)

	v, ok := ExtractFieldByCategory(data, CategoryRequirements, "es")
	require.True(t, ok)
	assert.Equal(t, "must be 18+", v)
}

func TestExtractFieldByCategoryCaseInsensitiveKey(t *testing.T) {
	data := []byte(`{"Requisitos": "case insensitive match"}`)

	v, ok := ExtractFieldByCategory(data, CategoryRequirements, "es")
	require.True(t, ok)
	assert.Equal(t, "case insensitive match", v)
}

func TestExtractFieldByCategorySkipsNullValues(t *testing.T) {
	data := []byte(`{"requisitos": null, "requirements": "non-null fallback"}`)

	v, ok := ExtractFieldByCategory(data, CategoryRequirements, "es")
	require.True(t, ok)
	assert.Equal(t, "non-null fallback", v)
}

func TestExtractFieldByCategoryNoMatch(t *testing.T) {
	data := []byte(`{"unrelated": "value"}`)
	_, ok := ExtractFieldByCategory(data, CategoryRequirements, "es")
	assert.False(t, ok)
}

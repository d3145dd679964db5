package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveFlushRoundTripsPlaintext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")
	s := New(path, 0, "PATTERNCORE_TEST_UNSET_KEY")

	s.Save([]byte(`{"a":1}`))
	require.NoError(t, s.Flush())

	got, err := s.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestLoadMissingFileReturnsNil(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "missing.json"), 0, "PATTERNCORE_TEST_UNSET_KEY")
	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveDebounceCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.json")
	s := New(path, 50*time.Millisecond, "PATTERNCORE_TEST_UNSET_KEY")

	s.Save([]byte(`{"v":1}`))
	s.Save([]byte(`{"v":2}`))
	s.Save([]byte(`{"v":3}`))

	time.Sleep(150 * time.Millisecond)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3}`, string(got))
}

func TestEncryptionRoundTrip(t *testing.T) {
	const envVar = "PATTERNCORE_TEST_ENCRYPTION_KEY"
	t.Setenv(envVar, "a-test-master-key")

	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	s := New(path, 0, envVar)

	s.Save([]byte(`{"secret":"token"}`))
	require.NoError(t, s.Flush())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, isEncrypted(onDisk))
	assert.NotContains(t, string(onDisk), "secret")

	got, err := s.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"secret":"token"}`, string(got))
}

func TestMigrationOnReadEncryptsPlaintextFile(t *testing.T) {
	const envVar = "PATTERNCORE_TEST_ENCRYPTION_KEY_2"
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"v":1}`), 0o600))

	t.Setenv(envVar, "another-test-key")
	s := New(path, 0, envVar)

	got, err := s.Load()
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, isEncrypted(onDisk), "plaintext file must be re-encrypted on load once a key is configured")
}

func TestLoadFailsWhenEncryptedButNoKeyConfigured(t *testing.T) {
	const envVar = "PATTERNCORE_TEST_ENCRYPTION_KEY_3"
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	t.Setenv(envVar, "key-for-writer")
	writer := New(path, 0, envVar)
	writer.Save([]byte(`{"v":1}`))
	require.NoError(t, writer.Flush())

	reader := New(path, 0, "PATTERNCORE_TEST_UNSET_KEY")
	_, err := reader.Load()
	assert.Error(t, err)
}

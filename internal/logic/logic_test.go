package logic_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomerhc/broken/internal/config"
	"github.com/tomerhc/broken/internal/filter"
	"github.com/tomerhc/broken/internal/logic"
)

func baseConfig(mode config.Mode, files ...string) *config.Config {
	return &config.Config{
		Key:         "k3y",
		Parallel:    2,
		Granularity: config.GranularityAuto,
		BlockSize:   32,
		Rounds:      2,
		Suffixes:    config.Suffixes{Encrypt: "_enc"},
		LogLevel:    "error",
		Mode:        mode,
		Files:       files,
	}
}

func streams() (logic.Streams, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer

	return logic.Streams{Out: &out, Err: &errOut}, &out, &errOut
}

func populate(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

func TestRunEncryptDecryptDirectory(t *testing.T) {
	t.Parallel()

	dir := populate(t, map[string]string{
		"a.txt":        "first file",
		"nested/b.txt": "second file",
		"skip.log":     "excluded",
	})

	enc := baseConfig(config.ModeEncrypt, dir)
	enc.Exclude = []string{"*.log"}
	enc.Delete = true
	enc.Stats = true

	s, _, errOut := streams()
	require.NoError(t, logic.Run(enc, s))
	assert.Contains(t, errOut.String(), "Processed: 2")

	_, err := os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "skip.log_enc"))
	assert.True(t, os.IsNotExist(err))

	// decryption picks only *_enc files by default
	dec := baseConfig(config.ModeDecrypt, dir)
	dec.Trim = true

	s, _, _ = streams()
	require.NoError(t, logic.Run(dec, s))

	got, err := os.ReadFile(filepath.Join(dir, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second file", string(got))
}

func TestRunGrep(t *testing.T) {
	t.Parallel()

	dir := populate(t, map[string]string{"notes.txt": "one\ntwo needle\nthree\n"})

	require.NoError(t, logic.Run(baseConfig(config.ModeEncrypt, filepath.Join(dir, "notes.txt")), logic.Streams{
		Out: &bytes.Buffer{}, Err: &bytes.Buffer{},
	}))

	grep := baseConfig(config.ModeGrep, dir)
	grep.Pattern = "needle"

	s, out, _ := streams()
	require.NoError(t, logic.Run(grep, s))
	assert.Equal(t, filepath.Join(dir, "notes.txt_enc")+":two needle\n", out.String())
}

func TestRunDry(t *testing.T) {
	t.Parallel()

	dir := populate(t, map[string]string{"a.txt": "x"})

	cfg := baseConfig(config.ModeEncrypt, filepath.Join(dir, "*.txt"))
	cfg.Key = ""
	cfg.Dry = true

	s, out, _ := streams()
	require.NoError(t, logic.Run(cfg, s))
	assert.Contains(t, out.String(), "a.txt_enc")

	_, err := os.Stat(filepath.Join(dir, "a.txt_enc"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunFailures(t *testing.T) {
	t.Parallel()

	dir := populate(t, map[string]string{"bad.txt_enc": "garbage"})

	cfg := baseConfig(config.ModeDecrypt, dir)
	cfg.MetricsFile = filepath.Join(dir, "run.prom")

	s, _, _ := streams()
	require.Error(t, logic.Run(cfg, s))

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `broken_files_total{op="decrypt",status="error"} 1`)

	noKey := baseConfig(config.ModeDecrypt, dir)
	noKey.Key = ""
	require.ErrorIs(t, logic.Run(noKey, s), config.ErrNoKey)
}

func TestRunNoMatchesIsNotAnError(t *testing.T) {
	t.Parallel()

	dir := populate(t, map[string]string{"a.txt": "untouched"})

	for _, mode := range []config.Mode{config.ModeEncrypt, config.ModeDecrypt, config.ModeGrep} {
		t.Run(string(mode), func(t *testing.T) {
			t.Parallel()

			cfg := baseConfig(mode, filepath.Join(dir, "*.none"))
			cfg.Key = ""
			cfg.Pattern = "x"
			cfg.Stats = true
			cfg.LogLevel = "warn"

			s, out, errOut := streams()
			require.NoError(t, logic.Run(cfg, s))

			assert.Empty(t, out.String())
			assert.Contains(t, errOut.String(), filter.ErrNoMatches.Error())
			assert.Contains(t, errOut.String(), "Processed: 0")
		})
	}
}

func TestRunCheck(t *testing.T) {
	t.Parallel()

	dir := populate(t, map[string]string{"a.txt": "", "b.md": ""})

	cfg := baseConfig(config.ModeCheck, dir)
	cfg.Include = []string{"*.txt"}
	cfg.Exclude = []string{"*.md"}

	s, out, _ := streams()
	require.NoError(t, logic.RunCheck(cfg, s))
	assert.Contains(t, out.String(), "include: *.txt: 1 files")

	cfg.Exclude = []string{"*.go"}

	s, _, errOut := streams()
	require.ErrorIs(t, logic.RunCheck(cfg, s), logic.ErrUnmatchedPatterns)
	assert.Contains(t, errOut.String(), "exclude: *.go: 0 files (ERROR)")
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, int64(400_000), cfg.Resolution)
	require.Equal(t, 10, cfg.SizeThreshold)
	require.Equal(t, int64(60_000), cfg.MinDistance)
	require.Len(t, cfg.Chromosomes, 23)
	require.Equal(t, "1", cfg.Chromosomes[0])
	require.Equal(t, "X", cfg.Chromosomes[22])
	require.Equal(t, CacheFile, cfg.Cache.Backend)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	input := `
resolution = 100000
size_threshold = 0
unit_timeout = "30s"
chromosomes = ["chr1", "X"]

[cache]
backend = "redis"

[cache.redis]
addr = "localhost:6379"
db = 2

[mongo]
uri = "mongodb://localhost:27017"
`
	cfg, err := Decode(strings.NewReader(input), "test.toml")
	require.NoError(t, err)
	require.Equal(t, int64(100_000), cfg.Resolution)
	require.Equal(t, 30*time.Second, cfg.UnitTimeout)
	require.Equal(t, []string{"chr1", "X"}, cfg.Chromosomes)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, int64(60_000), cfg.MinDistance, "unset keys keep defaults")

	opts := cfg.PipelineOptions()
	require.True(t, opts.Uncapped)
	require.Equal(t, 30*time.Second, opts.UnitTimeout)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", "resolution = "},
		{"unknown key", "resolutoin = 5"},
		{"zero resolution", "resolution = 0"},
		{"negative threshold", "size_threshold = -1"},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"bad chromosome", `chromosomes = ["chr 1"]`},
		{"empty chromosome", `chromosomes = [""]`},
		{"zero threshold fraction", "zero_threshold = 0.0"},
		{"bad mongo uri", "[mongo]\nuri = \"not a uri\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), "test.toml")
			if err == nil {
				t.Fatal("Decode() error = nil, want error")
			}
			if !hcerrors.Is(err, hcerrors.ErrCodeInvalidConfig) && !hcerrors.Is(err, hcerrors.ErrCodeInvalidInput) {
				t.Errorf("Decode() error code = %q", hcerrors.GetCode(err))
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hicluster.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Workers)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.True(t, hcerrors.Is(err, hcerrors.ErrCodeFileNotFound))
}

func TestFind(t *testing.T) {
	require.Equal(t, "x.toml", Find("x.toml"))

	dir := t.TempDir()
	t.Chdir(dir)
	require.Equal(t, "", Find(""))
	require.NoError(t, os.WriteFile(DefaultFile, nil, 0o644))
	require.Equal(t, DefaultFile, Find(""))
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.UnitTimeout = time.Minute
	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	back, err := Decode(&buf, "encoded")
	require.NoError(t, err)
	require.Equal(t, cfg, back)
}

package schema_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-cct/pkg/schema"
)

const settingsYML = `
os:
  Windows:
    subsystem: [None, cygwin, msys, msys2, wsl]
  Linux:
  Macos:
arch: [x86, x86_64, armv8]
build_type: [None, Debug, Release]
compiler:
  gcc:
    version: ["4.9", "5.10", 11, "12"]
    libcxx: [libstdc++, libstdc++11]
    cppstd: [null, 98, gnu98, 11, 14, 17, 20]
  Visual Studio:
    version: ["15", "16"]
    runtime: [MD, MT, MTd, MDd]
  intel:
    base: ANY
empty_list: []
custom: [ANY]
`

func mustParse(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(settingsYML))
	require.NoError(t, err)

	return s
}

func TestLookup(t *testing.T) {
	s := mustParse(t)

	tests := []struct {
		name   string
		path   []string
		want   []string
		wantOK bool
	}{
		{name: "list leaf", path: []string{"arch"}, want: []string{"x86", "x86_64", "armv8"}, wantOK: true},
		{name: "mapping yields keys in document order", path: []string{"os"}, want: []string{"Windows", "Linux", "Macos"}, wantOK: true},
		{name: "compiler keys", path: []string{"compiler"}, want: []string{"gcc", "Visual Studio", "intel"}, wantOK: true},
		{name: "nested list keeps text form", path: []string{"compiler", "gcc", "version"}, want: []string{"4.9", "5.10", "11", "12"}, wantOK: true},
		{name: "null item renders as None", path: []string{"compiler", "gcc", "cppstd"}, want: []string{"None", "98", "gnu98", "11", "14", "17", "20"}, wantOK: true},
		{name: "scalar leaf", path: []string{"compiler", "intel", "base"}, want: []string{"ANY"}, wantOK: true},
		{name: "missing top-level key", path: []string{"libcxx"}},
		{name: "missing nested key", path: []string{"compiler", "Visual Studio", "libcxx"}},
		{name: "null mapping value is empty", path: []string{"os", "Linux"}},
		{name: "empty list", path: []string{"empty_list"}},
		{name: "path continues past a list", path: []string{"arch", "x86"}},
		{name: "empty path", path: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Lookup(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLookup_NilSchema(t *testing.T) {
	var s *schema.Schema
	_, ok := s.Lookup([]string{"os"})
	assert.False(t, ok)
}

func TestAllows(t *testing.T) {
	assert.True(t, schema.Allows([]string{"a", "b"}, "b"))
	assert.False(t, schema.Allows([]string{"a", "b"}, "c"))
	assert.True(t, schema.Allows([]string{schema.Any}, "anything"))
	assert.False(t, schema.Allows(nil, ""))
}

func TestParse_Errors(t *testing.T) {
	_, err := schema.Parse([]byte(""))
	require.Error(t, err)

	_, err = schema.Parse([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root must be a mapping")

	_, err = schema.Parse([]byte("os: [Linux\n"))
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	userHome := t.TempDir()
	t.Setenv("HOME", userHome)

	t.Run("loads from conan home", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(home, schema.FileName), []byte(settingsYML), 0o600))

		var buf bytes.Buffer
		s := schema.Resolve(home, slog.New(slog.NewTextHandler(&buf, nil)))
		require.NotNil(t, s)
		assert.Equal(t, filepath.Join(home, schema.FileName), s.Source())
		assert.NotContains(t, buf.String(), "level=WARN")
	})

	t.Run("falls back to legacy location", func(t *testing.T) {
		legacy := filepath.Join(userHome, ".conan")
		require.NoError(t, os.MkdirAll(legacy, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(legacy, schema.FileName), []byte(settingsYML), 0o600))
		t.Cleanup(func() { _ = os.RemoveAll(legacy) })

		var buf bytes.Buffer
		s := schema.Resolve(t.TempDir(), slog.New(slog.NewTextHandler(&buf, nil)))
		require.NotNil(t, s)
		assert.Equal(t, filepath.Join(legacy, schema.FileName), s.Source())
		assert.Contains(t, buf.String(), "Attempting to fall back")
	})

	t.Run("missing everywhere returns nil", func(t *testing.T) {
		var buf bytes.Buffer
		s := schema.Resolve(t.TempDir(), slog.New(slog.NewTextHandler(&buf, nil)))
		assert.Nil(t, s)
		assert.Contains(t, buf.String(), "Settings not validated")
	})
}

func TestCandidates(t *testing.T) {
	userHome := t.TempDir()
	t.Setenv("HOME", userHome)

	legacyHome := filepath.Join(userHome, ".conan")
	assert.Equal(t, []string{filepath.Join(legacyHome, schema.FileName)}, schema.Candidates(legacyHome))
	assert.Equal(t, []string{
		filepath.Join("/opt/conan", schema.FileName),
		filepath.Join(legacyHome, schema.FileName),
	}, schema.Candidates("/opt/conan"))
}

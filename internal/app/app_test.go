package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-cct/internal/app"
	"github.com/lwmacct/251207-go-cct/pkg/profile"
	"github.com/lwmacct/251207-go-cct/pkg/settings"
)

const settingsYML = `
os: [Windows, Linux, Macos, FreeBSD]
os_build: [Windows, Linux, Macos, FreeBSD]
arch: [x86, x86_64, armv7, armv8]
arch_build: [x86, x86_64, armv7, armv8]
build_type: [None, Debug, Release]
compiler:
  gcc:
    version: ["5", "8", "11", "12"]
    libcxx: [libstdc++, libstdc++11]
    cppstd: [None, 98, 11, 14, 17, 20]
  Visual Studio:
    version: ["15", "16"]
    runtime: [MD, MT]
`

type result struct {
	stdout string
	logs   string
	err    error
}

// isolate 隔离用户目录与环境变量，返回 conan home。
func isolate(t *testing.T, withSchema bool) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CONAN_HOME", "")
	t.Chdir(t.TempDir())

	home := t.TempDir()
	if withSchema {
		require.NoError(t, os.WriteFile(filepath.Join(home, "settings.yml"), []byte(settingsYML), 0o600))
	}

	return home
}

func run(args ...string) result {
	var stdout, stderr bytes.Buffer
	cmd := app.New()
	cmd.Writer = &stdout
	cmd.ErrWriter = &stderr

	err := cmd.Run(context.Background(), append([]string{"cct"}, args...))

	return result{stdout: stdout.String(), logs: stderr.String(), err: err}
}

func readProfile(t *testing.T, home, name string) *profile.Profile {
	t.Helper()
	p, err := profile.Read(filepath.Join(home, "profiles", name))
	require.NoError(t, err)

	return p
}

func TestSetProfile_NewProfile(t *testing.T) {
	home := isolate(t, false)

	r := run("-v", "--conan-home", home, "set-profile", "-n", "test", "-s", "build_type=Debug")
	require.NoError(t, r.err)
	assert.NotContains(t, r.logs, "level=CRITICAL")
	assert.Contains(t, r.logs, "Settings not validated")

	p := readProfile(t, home, "test")
	assert.Equal(t, []string{"build_type", "os", "os_build", "arch", "arch_build"}, p.Settings.Keys())
	v, _ := p.Settings.Get("build_type")
	assert.Equal(t, "Debug", v)
}

func TestSetProfile_ExistingProfileForced(t *testing.T) {
	home := isolate(t, false)
	path := filepath.Join(home, "profiles", "test")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("[settings]\nos=Windows\n"), 0o600))

	r := run("-v", "--conan-home", home, "set-profile", "-f", "-n", "test", "-s", "build_type=Debug")
	require.NoError(t, r.err)
	assert.NotContains(t, r.logs, "level=CRITICAL")
	assert.Contains(t, r.logs, "Profile 'test' already exists! Overwriting.")

	v, _ := readProfile(t, home, "test").Settings.Get("build_type")
	assert.Equal(t, "Debug", v)
}

func TestSetProfile_ExistingProfileNotForced(t *testing.T) {
	home := isolate(t, false)
	path := filepath.Join(home, "profiles", "test")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("[settings]\nos=Windows\n"), 0o600))

	r := run("--conan-home", home, "set-profile", "-n", "test", "-s", "build_type=Debug")
	require.ErrorIs(t, r.err, profile.ErrExists)
	assert.Contains(t, r.logs, "level=CRITICAL")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[settings]\nos=Windows\n", string(content))
}

func TestSetProfile_InvalidSettingSanitizedWhenForced(t *testing.T) {
	home := isolate(t, true)

	r := run("-v", "--conan-home", home, "set-profile", "-f", "-n", "test",
		"-s", "compiler=Visual Studio", "-s", "compiler.libcxx=libstdc++11")
	require.NoError(t, r.err)
	assert.NotContains(t, r.logs, "level=CRITICAL")
	assert.Contains(t, r.logs, "Sanitizing 'compiler.libcxx' from profile.")

	p := readProfile(t, home, "test")
	assert.False(t, p.Settings.Has("compiler.libcxx"))
	v, _ := p.Settings.Get("compiler")
	assert.Equal(t, "Visual Studio", v)
}

func TestSetProfile_InvalidSettingFails(t *testing.T) {
	home := isolate(t, true)

	r := run("-v", "--conan-home", home, "set-profile", "-n", "test",
		"-s", "compiler=Visual Studio", "-s", "compiler.libcxx=libstdc++11")

	var serr *settings.SettingError
	require.ErrorAs(t, r.err, &serr)
	assert.Contains(t, r.logs, "level=CRITICAL")
	assert.Contains(t, r.logs,
		"'compiler.libcxx' is not a valid setting for compiler Visual Studio! Force removal of invalid keys with -f")
	assert.NoFileExists(t, filepath.Join(home, "profiles", "test"))
}

func TestSetProfile_ValuePolicy(t *testing.T) {
	home := isolate(t, true)

	r := run("--conan-home", home, "set-profile", "-n", "warn",
		"-s", "compiler=gcc", "-s", "compiler.version=13")
	require.NoError(t, r.err)
	assert.Contains(t, r.logs, "level=WARNING")
	assert.True(t, readProfile(t, home, "warn").Settings.Has("compiler.version"))

	r = run("--conan-home", home, "--profile-value-policy", "strict", "set-profile", "-n", "strict",
		"-s", "compiler=gcc", "-s", "compiler.version=13")
	require.Error(t, r.err)

	r = run("--conan-home", home, "--profile-value-policy", "strict", "set-profile", "-f", "-n", "strict",
		"-s", "compiler=gcc", "-s", "compiler.version=13")
	require.NoError(t, r.err)
	assert.False(t, readProfile(t, home, "strict").Settings.Has("compiler.version"))
}

func TestSetProfile_CppstdCheck(t *testing.T) {
	home := isolate(t, true)
	args := []string{"set-profile", "-n", "std", "-s", "compiler=gcc", "-s", "compiler.version=5", "-s", "compiler.cppstd=20"}

	r := run(append([]string{"--conan-home", home}, args...)...)
	var serr *settings.SettingError
	require.ErrorAs(t, r.err, &serr)
	assert.Equal(t, settings.ReasonUnsupported, serr.Reason)

	r = run(append([]string{"--conan-home", home, "--profile-cppstd-check=false"}, args...)...)
	require.NoError(t, r.err)
	assert.True(t, readProfile(t, home, "std").Settings.Has("compiler.cppstd"))
}

func TestSetProfile_AllSections(t *testing.T) {
	home := isolate(t, false)

	r := run("-q", "--conan-home", home, "set-profile", "-n", "full",
		"-s", "build_type=Release",
		"-o", "zlib:shared=True",
		"-c", `tools.build:cxxflags=["-O2","-g"]`,
		"-br", "*=cmake/3.20.0",
		"-tr", "*=ninja/1.11.1",
		"-e", "CC=gcc",
		"-be", "PATH=/opt/bin",
		"-re", "LD_LIBRARY_PATH=/opt/lib",
	)
	require.NoError(t, r.err)
	assert.Empty(t, r.logs)

	p := readProfile(t, home, "full")
	for section, key := range map[string]string{
		profile.SectionOptions:       "zlib:shared",
		profile.SectionConf:          "tools.build:cxxflags",
		profile.SectionBuildRequires: "*",
		profile.SectionToolRequires:  "*",
		profile.SectionEnv:           "CC",
		profile.SectionBuildEnv:      "PATH",
		profile.SectionRunEnv:        "LD_LIBRARY_PATH",
	} {
		assert.True(t, p.Section(section).Has(key), section)
	}
	v, _ := p.Conf.Get("tools.build:cxxflags")
	assert.Equal(t, `["-O2","-g"]`, v)
}

func TestSetProfile_ValuesWithCommas(t *testing.T) {
	home := isolate(t, false)

	r := run("-q", "--conan-home", home, "set-profile", "-n", "commas",
		"-c", `tools.build:defines=["A","B"]`,
		"-o", "pkg:list=a,b",
		"-e", "CFLAGS=-O2,-g",
	)
	require.NoError(t, r.err)

	p := readProfile(t, home, "commas")
	v, _ := p.Conf.Get("tools.build:defines")
	assert.Equal(t, `["A","B"]`, v)
	v, _ = p.Options.Get("pkg:list")
	assert.Equal(t, "a,b", v)
	v, _ = p.Env.Get("CFLAGS")
	assert.Equal(t, "-O2,-g", v)
}

func TestSetProfile_MalformedArgument(t *testing.T) {
	home := isolate(t, false)

	r := run("--conan-home", home, "set-profile", "-n", "bad", "-s", "build_type")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "--setting")
	assert.NoFileExists(t, filepath.Join(home, "profiles", "bad"))
}

func TestSetProfile_ConanHomeFromEnv(t *testing.T) {
	home := isolate(t, false)
	t.Setenv("CONAN_HOME", home)

	r := run("set-profile", "-n", "envhome", "-s", "build_type=Debug")
	require.NoError(t, r.err)
	assert.FileExists(t, filepath.Join(home, "profiles", "envhome"))
}

func TestShowProfile(t *testing.T) {
	home := isolate(t, false)

	require.NoError(t, run("-q", "--conan-home", home, "set-profile", "-n", "shown", "-s", "build_type=Debug").err)

	r := run("--conan-home", home, "show-profile", "-n", "shown")
	require.NoError(t, r.err)
	assert.True(t, strings.HasPrefix(r.stdout, "[settings]\nbuild_type=Debug\n"), r.stdout)

	r = run("--conan-home", home, "show-profile", "-n", "missing")
	require.Error(t, r.err)
	assert.Contains(t, r.logs, "level=CRITICAL")
}

func TestVersion(t *testing.T) {
	r := run("version")
	require.NoError(t, r.err)
	assert.True(t, strings.HasPrefix(r.stdout, "cct "), r.stdout)
}

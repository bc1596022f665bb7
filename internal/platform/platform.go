// Package platform 探测当前主机的 os/arch，并转换为 Conan 的命名。
package platform

import (
	"runtime"

	"github.com/lwmacct/251207-go-cct/pkg/keyval"
)

var osNames = map[string]string{
	"linux":   "Linux",
	"darwin":  "Macos",
	"windows": "Windows",
	"freebsd": "FreeBSD",
	"solaris": "SunOS",
	"android": "Android",
	"ios":     "iOS",
}

var archNames = map[string]string{
	"amd64":   "x86_64",
	"386":     "x86",
	"arm64":   "armv8",
	"arm":     "armv7",
	"ppc64le": "ppc64le",
	"ppc64":   "ppc64",
	"s390x":   "s390x",
	"riscv64": "riscv64",
	"wasm":    "wasm",
}

// Host 主机信息。
type Host struct {
	OS   string
	Arch string
}

// Detect 返回当前进程运行的主机信息。
func Detect() Host {
	return FromGo(runtime.GOOS, runtime.GOARCH)
}

// FromGo 将 GOOS/GOARCH 转换为 Conan 名称，未知值原样返回。
func FromGo(goos, goarch string) Host {
	h := Host{OS: goos, Arch: goarch}
	if name, ok := osNames[goos]; ok {
		h.OS = name
	}
	if name, ok := archNames[goarch]; ok {
		h.Arch = name
	}

	return h
}

// Defaults 返回写入 profile 的默认 settings。
func (h Host) Defaults() *keyval.Map {
	return keyval.New(
		"os", h.OS,
		"os_build", h.OS,
		"arch", h.Arch,
		"arch_build", h.Arch,
	)
}

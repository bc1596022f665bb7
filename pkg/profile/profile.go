// Package profile 组装并读写 Conan profile 文件。
//
// profile 是 INI 风格的文本，分区依次为：
//
//	[settings]
//	[options]
//	[build_requires]
//	[env]
//	[conf]
//	[buildenv]
//
// [tool_requires] 与 [runenv] 仅在非空时写出。key 与值之间不加空格。
package profile

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/lwmacct/251207-go-cct/pkg/keyval"
	"github.com/lwmacct/251207-go-cct/pkg/settings"
)

// 分区名称。
const (
	SectionSettings      = "settings"
	SectionOptions       = "options"
	SectionBuildRequires = "build_requires"
	SectionToolRequires  = "tool_requires"
	SectionEnv           = "env"
	SectionConf          = "conf"
	SectionBuildEnv      = "buildenv"
	SectionRunEnv        = "runenv"
)

// DirName profile 在 conan home 下的目录名。
const DirName = "profiles"

// ErrInvalidName profile 名称为空或会逃逸出 profiles 目录。
var ErrInvalidName = errors.New("invalid profile name")

// Profile 一个完整的 profile。
type Profile struct {
	Name          string
	Settings      *keyval.Map
	Options       *keyval.Map
	Conf          *keyval.Map
	BuildRequires *keyval.Map
	ToolRequires  *keyval.Map
	Env           *keyval.Map
	BuildEnv      *keyval.Map
	RunEnv        *keyval.Map
}

// New 创建所有分区均为空的 Profile。
func New(name string) *Profile {
	return &Profile{
		Name:          name,
		Settings:      &keyval.Map{},
		Options:       &keyval.Map{},
		Conf:          &keyval.Map{},
		BuildRequires: &keyval.Map{},
		ToolRequires:  &keyval.Map{},
		Env:           &keyval.Map{},
		BuildEnv:      &keyval.Map{},
		RunEnv:        &keyval.Map{},
	}
}

type section struct {
	name   string
	values *keyval.Map
	always bool // 为空时也写出
}

// sections 按写出顺序返回分区。
func (p *Profile) sections() []section {
	return []section{
		{SectionSettings, p.Settings, true},
		{SectionOptions, p.Options, true},
		{SectionBuildRequires, p.BuildRequires, true},
		{SectionToolRequires, p.ToolRequires, false},
		{SectionEnv, p.Env, true},
		{SectionConf, p.Conf, true},
		{SectionBuildEnv, p.BuildEnv, true},
		{SectionRunEnv, p.RunEnv, false},
	}
}

// Section 按名称返回分区，未知名称返回 nil。
func (p *Profile) Section(name string) *keyval.Map {
	for _, s := range p.sections() {
		if s.name == name {
			return s.values
		}
	}

	return nil
}

// Path 返回 profile 在 home 下的路径。
func Path(home, name string) (string, error) {
	if name == "" || !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return filepath.Join(home, DirName, name), nil
}

// Builder 合并默认值并校验 settings。
type Builder struct {
	// Defaults 探测到的默认 settings，显式设置优先。
	Defaults *keyval.Map
	// Validator 为 nil 时不做校验。
	Validator *settings.Validator
}

// Build 返回校验后的新 Profile，p 不会被修改。
//
// 先校验显式 settings，再追加尚未设置的默认值；默认值不参与校验。
func (b *Builder) Build(p *Profile) (*Profile, error) {
	out := p.clone()

	if b.Validator != nil {
		validated, err := b.Validator.Validate(out.Settings)
		if err != nil {
			return nil, err
		}
		out.Settings = validated
	}

	for key, value := range b.Defaults.All() {
		if !out.Settings.Has(key) {
			out.Settings.Set(key, value)
		}
	}

	return out, nil
}

func (p *Profile) clone() *Profile {
	return &Profile{
		Name:          p.Name,
		Settings:      p.Settings.Clone(),
		Options:       p.Options.Clone(),
		Conf:          p.Conf.Clone(),
		BuildRequires: p.BuildRequires.Clone(),
		ToolRequires:  p.ToolRequires.Clone(),
		Env:           p.Env.Clone(),
		BuildEnv:      p.BuildEnv.Clone(),
		RunEnv:        p.RunEnv.Clone(),
	}
}

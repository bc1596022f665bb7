package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/lwmacct/251207-go-cct/pkg/settings"
)

// ErrExists 目标 profile 已存在且未强制覆盖。
var ErrExists = errors.New("profile already exists")

// init 关闭 ini.v1 的对齐与 "=" 两侧空格，输出 key=value。
//
// PrettyFormat 与 PrettyEqual 是 ini.v1 的包级变量，修改对整个进程内
// 所有 ini.v1 使用者生效。
func init() {
	ini.PrettyFormat = false
	ini.PrettyEqual = false
}

// iniOptions conf 的 key 含 ":"，值可能含 "#" 与 ";"，首尾的引号属于值本身，
// 均按原文读写。
var iniOptions = ini.LoadOptions{
	KeyValueDelimiters:      "=",
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
}

// WriteOptions 写出选项。
type WriteOptions struct {
	Force  bool // 覆盖已存在的文件
	Logger *slog.Logger
}

// Encode 将 profile 序列化到 w。
func (p *Profile) Encode(w io.Writer) error {
	f := ini.Empty(iniOptions)
	for _, s := range p.sections() {
		if s.values.Len() == 0 && !s.always {
			continue
		}
		sec, err := f.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("section %s: %w", s.name, err)
		}
		for k, v := range s.values.All() {
			if _, err := sec.NewKey(k, v); err != nil {
				return fmt.Errorf("section %s: key %q: %w", s.name, k, err)
			}
		}
	}

	_, err := f.WriteTo(w)

	return err
}

// Write 将 profile 写入 path，必要时创建父目录。
//
// 文件已存在且未设置 Force 时不做任何修改并返回 [ErrExists]。
// 所有失败都以 CRITICAL 级别记录并返回。
func Write(path string, p *Profile, opts WriteOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if _, err := os.Stat(path); err == nil {
		if !opts.Force {
			logger.Log(context.Background(), settings.LevelCritical,
				fmt.Sprintf("Profile '%s' already exists! Use -f to force.", p.Name), "path", path)

			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		logger.Warn(fmt.Sprintf("Profile '%s' already exists! Overwriting.", p.Name))
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.Log(context.Background(), settings.LevelCritical,
			fmt.Sprintf("Could not stat file '%s'. Profile not written.", path), "error", err)

		return fmt.Errorf("stat profile %s: %w", path, err)
	}

	if err := write(path, p, logger); err != nil {
		logger.Log(context.Background(), settings.LevelCritical,
			fmt.Sprintf("Could not open file '%s'. Profile not written.", path), "error", err)

		return fmt.Errorf("write profile %s: %w", path, err)
	}

	logger.Info(fmt.Sprintf("Successfully wrote profile '%s' to '%s'", p.Name, path))

	return nil
}

func write(path string, p *Profile, logger *slog.Logger) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // profiles are shared with conan
		return err
	}

	f, err := os.Create(path) //nolint:gosec // path is derived from the conan home
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	logger.Info(fmt.Sprintf("Writing profile '%s' to '%s'", p.Name, path))

	return p.Encode(f)
}

// Read 从 path 读取 profile，名称取文件名。未知分区被忽略。
func Read(path string) (*Profile, error) {
	f, err := ini.LoadSources(iniOptions, path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	p := New(filepath.Base(path))
	for _, s := range p.sections() {
		sec, err := f.GetSection(s.name)
		if err != nil {
			continue
		}
		for _, key := range sec.Keys() {
			s.values.Set(key.Name(), key.Value())
		}
	}

	return p, nil
}

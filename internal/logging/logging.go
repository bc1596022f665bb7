// Package logging 构建命令使用的 slog.Logger。
//
// 日志配置是一个值对象 ([Config])，由命令在每次调用时根据 flags 生成，
// 再显式传入各个操作；不修改任何全局 handler。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lwmacct/251207-go-cct/pkg/settings"
)

// LevelCritical 高于 ERROR 的致命级别。
const LevelCritical = settings.LevelCritical

var levelNames = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	slog.LevelWarn:  "WARNING",
	slog.LevelError: "ERROR",
	LevelCritical:   "CRITICAL",
}

// Config 日志配置。
type Config struct {
	Level    slog.Level
	Suppress bool // 丢弃全部输出
}

// DefaultConfig 返回 INFO 级别配置。
func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo}
}

// SetLevel 返回调整级别后的配置副本。
func (c Config) SetLevel(level slog.Level) Config {
	c.Level = level
	return c
}

// Suppressed 返回静默的配置副本。
func (c Config) Suppressed() Config {
	c.Suppress = true
	return c
}

// ParseLevel 解析级别名称 (大小写不敏感)。
//
// NOTSET 等价于 DEBUG，WARN 作为 WARNING 的别名。
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NOTSET", "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// FromFlags 由命令行参数生成配置。
//
// quiet 优先级最高；verbose 强制为 DEBUG。
func FromFlags(level string, verbose, quiet bool) (Config, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig().SetLevel(lvl)
	if verbose {
		cfg = cfg.SetLevel(slog.LevelDebug)
	}
	if quiet {
		cfg = cfg.Suppressed()
	}

	return cfg, nil
}

// New 创建写入 w 的文本格式 Logger。
func New(w io.Writer, cfg Config) *slog.Logger {
	if cfg.Suppress || w == nil {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       cfg.Level,
		ReplaceAttr: replaceLevel,
	}))
}

// Discard 返回丢弃所有输出的 Logger，供测试与库默认值使用。
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Critical 以 [LevelCritical] 记录日志。
func Critical(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelCritical, msg, args...)
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	if name, ok := levelNames[lvl]; ok {
		a.Value = slog.StringValue(name)
	}

	return a
}

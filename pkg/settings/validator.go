// Package settings 按参考模式 (settings.yml) 校验 profile 的 [settings] 分区。
//
// 校验以 key 是否存在为准：点分 key 被拆为路径后在模式中查找，
// 含 compiler 段的 key 会在 compiler 之后插入当前 compiler 取值，
// 例如 compiler.version → compiler.gcc.version。
//
// 值不在合法集合中时的处理由 [ValuePolicy] 决定。
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lwmacct/251207-go-cct/pkg/keyval"
	"github.com/lwmacct/251207-go-cct/pkg/schema"
)

// LevelCritical 高于 ERROR 的致命级别，校验失败与写入失败都以此级别记录。
const LevelCritical = slog.LevelError + 4

// CompilerKey compiler 设置的 key，同时也是触发路径插入的段名。
const CompilerKey = "compiler"

// ValuePolicy 值不匹配时的处理策略。
type ValuePolicy string

const (
	// PolicyWarn 仅记录警告，不删除。
	PolicyWarn ValuePolicy = "warn"
	// PolicyStrict 视为违规：未强制时报错，强制时删除。
	PolicyStrict ValuePolicy = "strict"
)

// ParsePolicy 解析策略名称，空字符串返回 [PolicyWarn]。
func ParsePolicy(name string) (ValuePolicy, error) {
	switch ValuePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyWarn:
		return PolicyWarn, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown value policy %q (want %q or %q)", name, PolicyWarn, PolicyStrict)
	}
}

// Rule 在模式检查之后运行的附加检查。返回 nil 表示通过。
type Rule interface {
	Check(settings *keyval.Map) *SettingError
}

// Validator 校验 settings。
type Validator struct {
	Schema *schema.Schema // 为 nil 时跳过校验
	Force  bool           // 删除不合法的 key 而不是报错
	Policy ValuePolicy
	Rules  []Rule
	Logger *slog.Logger
}

// Validate 返回只包含合法 key 的新 Map，输入不会被修改。
//
// 每轮找出第一个违规项：未强制时返回 *SettingError；强制时删除该 key
// 并重新检查，直到没有违规。删除 compiler 本身会改变其余 compiler.*
// 的查找路径，因此逐个删除而不是一次性过滤。
func (v *Validator) Validate(in *keyval.Map) (*keyval.Map, error) {
	logger := v.logger()
	out := in.Clone()

	if v.Schema == nil {
		logger.Warn("No settings schema available. Settings not validated. Continuing.")

		return out, nil
	}

	for {
		serr := v.firstViolation(out)
		if serr == nil {
			break
		}
		if !v.Force {
			logger.Log(context.Background(), LevelCritical, serr.Error(), "key", serr.Key, "reason", serr.Reason.String())

			return nil, serr
		}
		logger.Warn(fmt.Sprintf("%s Sanitizing '%s' from profile.", serr.Message(), serr.Key))
		out.Delete(serr.Key)
	}

	for key, value := range out.All() {
		allowed, serr := v.checkKey(out, key, value)
		switch {
		case serr != nil:
			logger.Warn(serr.Message())
		case allowed != nil:
			logger.Debug(fmt.Sprintf("'%s=%s' successfully validated", key, value))
		}
	}

	return out, nil
}

func (v *Validator) logger() *slog.Logger {
	if v.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return v.Logger
}

// firstViolation 按 key 顺序返回第一个违规项，规则检查在模式检查之后。
func (v *Validator) firstViolation(settings *keyval.Map) *SettingError {
	for key, value := range settings.All() {
		_, serr := v.checkKey(settings, key, value)
		if serr == nil {
			continue
		}
		if serr.Reason == ReasonInvalidValue && v.Policy != PolicyStrict {
			continue
		}

		return serr
	}

	for _, rule := range v.Rules {
		if serr := rule.Check(settings); serr != nil {
			return serr
		}
	}

	return nil
}

// checkKey 检查单个 key，返回合法值集合与 (可能的) 错误。
func (v *Validator) checkKey(settings *keyval.Map, key, value string) ([]string, *SettingError) {
	compiler, _ := settings.Get(CompilerKey)

	path, ok := schemaPath(key, settings)
	if !ok {
		return nil, &SettingError{Key: key, Value: value, Compiler: compiler, Reason: ReasonUnknownKey}
	}

	allowed, ok := v.Schema.Lookup(path)
	if !ok {
		return nil, &SettingError{Key: key, Value: value, Compiler: compiler, Reason: ReasonUnknownKey}
	}

	if !schema.Allows(allowed, value) {
		return allowed, &SettingError{
			Key:      key,
			Value:    value,
			Compiler: compiler,
			Reason:   ReasonInvalidValue,
			Allowed:  allowed,
		}
	}

	return allowed, nil
}

// schemaPath 将点分 key 转换为模式路径。
//
// 多段 key 含 compiler 段时，在其后插入当前 compiler 取值；
// 此时若未设置 compiler，返回 false。
func schemaPath(key string, settings *keyval.Map) ([]string, bool) {
	segs := strings.Split(key, ".")
	if len(segs) < 2 {
		return segs, true
	}

	idx := slices.Index(segs, CompilerKey)
	if idx < 0 {
		return segs, true
	}

	compiler, ok := settings.Get(CompilerKey)
	if !ok || compiler == "" {
		return nil, false
	}

	return slices.Insert(segs, idx+1, compiler), true
}

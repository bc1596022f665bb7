package settings

import (
	"fmt"
	"strings"
)

// Reason 校验失败的原因。
type Reason int

const (
	// ReasonUnknownKey key 在参考模式中不存在 (或合法值集合为空)。
	ReasonUnknownKey Reason = iota + 1
	// ReasonInvalidValue key 存在，但值不在合法值集合中。
	ReasonInvalidValue
	// ReasonUnsupported 值合法，但被附加规则 ([Rule]) 拒绝。
	ReasonUnsupported
)

func (r Reason) String() string {
	switch r {
	case ReasonUnknownKey:
		return "unknown-key"
	case ReasonInvalidValue:
		return "invalid-value"
	case ReasonUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// forceHint 追加在致命错误后，提示用户使用 -f。
const forceHint = "Force removal of invalid keys with -f"

// SettingError 描述一个不合法的 setting。
type SettingError struct {
	Key      string
	Value    string
	Compiler string // 当前 compiler 取值，未设置时为空
	Reason   Reason
	Allowed  []string // ReasonInvalidValue 时的合法值集合
	Detail   string   // ReasonUnsupported 时的说明
}

// Message 返回不带 -f 提示的描述。
func (e *SettingError) Message() string {
	switch e.Reason {
	case ReasonInvalidValue:
		return fmt.Sprintf("'%s' has an invalid value! %s is not one of '[%s]'",
			e.Key, e.Value, strings.Join(e.Allowed, " "))
	case ReasonUnsupported:
		return fmt.Sprintf("'%s=%s' is not supported for compiler %s: %s!",
			e.Key, e.Value, e.compilerName(), e.Detail)
	default:
		return fmt.Sprintf("'%s' is not a valid setting for compiler %s!", e.Key, e.compilerName())
	}
}

func (e *SettingError) Error() string {
	return e.Message() + " " + forceHint
}

func (e *SettingError) compilerName() string {
	if e.Compiler == "" {
		return "None"
	}

	return e.Compiler
}

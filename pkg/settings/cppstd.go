package settings

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"

	"github.com/lwmacct/251207-go-cct/pkg/keyval"
)

// CppstdKey C++ 标准设置的 key。
const CppstdKey = "compiler.cppstd"

// cppstdMinimum 各编译器支持某个 C++ 标准所需的最低版本。
// 98 总是可用，未列出的编译器不做检查。
var cppstdMinimum = map[string]map[string]string{
	"gcc": {
		"11": "4.3",
		"14": "4.8",
		"17": "5",
		"20": "8",
		"23": "11",
	},
	"clang": {
		"11": "2.1",
		"14": "3.4",
		"17": "3.5",
		"20": "6",
		"23": "12",
	},
	"apple-clang": {
		"11": "4.0",
		"14": "5.1",
		"17": "6.1",
		"20": "10.0",
		"23": "13.0",
	},
	"msvc": {
		"14": "190",
		"17": "191",
		"20": "192",
		"23": "193",
	},
	"Visual Studio": {
		"14": "14",
		"17": "15",
		"20": "16",
		"23": "17",
	},
}

// CppstdRule 检查 compiler.cppstd 是否被所选编译器版本支持。
//
// 缺少 compiler / compiler.version / compiler.cppstd，或版本无法解析时视为通过；
// 取值本身是否合法由模式检查负责。
type CppstdRule struct{}

// Check 实现 [Rule]。
func (CppstdRule) Check(settings *keyval.Map) *SettingError {
	cppstd, ok := settings.Get(CppstdKey)
	if !ok {
		return nil
	}
	compiler, _ := settings.Get(CompilerKey)
	version, _ := settings.Get(CompilerKey + ".version")

	minimum, ok := MinimumCompilerVersion(compiler, cppstd)
	if !ok {
		return nil
	}

	have, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	want, err := semver.NewVersion(minimum)
	if err != nil {
		return nil
	}
	if !have.LessThan(want) {
		return nil
	}

	return &SettingError{
		Key:      CppstdKey,
		Value:    cppstd,
		Compiler: compiler,
		Reason:   ReasonUnsupported,
		Detail:   fmt.Sprintf("requires %s >= %s, have %s", compiler, minimum, version),
	}
}

// MinimumCompilerVersion 返回编译器支持 cppstd 所需的最低版本。
//
// "gnu" 前缀被忽略 (gnu17 与 17 相同)。未知编译器或标准返回 false。
func MinimumCompilerVersion(compiler, cppstd string) (string, bool) {
	table, ok := cppstdMinimum[compiler]
	if !ok {
		return "", false
	}
	minimum, ok := table[strings.TrimPrefix(cppstd, "gnu")]

	return minimum, ok
}

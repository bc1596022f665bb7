// Package config 提供 cct 的应用配置。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - .cct.yaml / ~/.cct.yaml / /etc/cct/config.yaml 或 --config
//  3. 环境变量 - CCT_ 前缀，例如 CCT_CONAN_HOME
//  4. CLI flags - 显式设置的全局 flag，例如 --conan-home
package config

import (
	"os"
	"path/filepath"
)

// AppName 应用名称，用于生成默认配置路径。
const AppName = "cct"

// EnvPrefix 环境变量前缀。
const EnvPrefix = "CCT_"

// Config 应用配置。
type Config struct {
	Conan   ConanConfig   `json:"conan" desc:"Conan 配置"`
	Log     LogConfig     `json:"log" desc:"日志配置"`
	Profile ProfileConfig `json:"profile" desc:"profile 生成配置"`
}

// ConanConfig Conan 相关配置。
type ConanConfig struct {
	Home string `json:"home" desc:"Conan home 目录 (CONAN_HOME)"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level   string `json:"level" desc:"日志级别 NOTSET/DEBUG/INFO/WARNING/ERROR/CRITICAL"`
	Verbose bool   `json:"verbose" desc:"输出 DEBUG 日志"`
	Quiet   bool   `json:"quiet" desc:"禁止所有输出"`
}

// ProfileConfig profile 生成配置。
type ProfileConfig struct {
	ValuePolicy string `json:"value-policy" desc:"值不在 settings.yml 中时的处理: warn 或 strict"`
	CppstdCheck bool   `json:"cppstd-check" desc:"检查 compiler.cppstd 与编译器版本是否匹配"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Conan: ConanConfig{
			Home: "${CONAN_HOME:-" + defaultHome() + "}",
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Profile: ProfileConfig{
			ValuePolicy: "warn",
			CppstdCheck: true,
		},
	}
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".conan"
	}

	return filepath.Join(home, ".conan")
}

// Package command 提供各子命令共享的全局 flags 与运行环境。
package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-cct/internal/config"
	"github.com/lwmacct/251207-go-cct/internal/logging"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// ConfigFlag 显式指定配置文件的 flag 名称。
const ConfigFlag = "config"

// GlobalFlags 返回根命令的全局 flags。
//
// 除 --config 外，flag 名称均由配置 key 生成 (见 [config.FlagName])。
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  ConfigFlag,
			Usage: "配置文件路径 (默认搜索 .cct.yaml, ~/.cct.yaml, /etc/cct/config.yaml)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: Defaults.Log.Level,
			Usage: "日志级别: NOTSET, DEBUG, INFO, WARNING, ERROR, CRITICAL",
		},
		&cli.BoolFlag{
			Name:    "log-verbose",
			Aliases: []string{"v"},
			Usage:   "输出 DEBUG 日志",
		},
		&cli.BoolFlag{
			Name:    "log-quiet",
			Aliases: []string{"q"},
			Usage:   "禁止所有输出",
		},
		&cli.StringFlag{
			Name:  "conan-home",
			Value: Defaults.Conan.Home,
			Usage: "Conan home 目录",
		},
		&cli.StringFlag{
			Name:  "profile-value-policy",
			Value: Defaults.Profile.ValuePolicy,
			Usage: "值不在 settings.yml 中时的处理: warn (仅警告) 或 strict (报错，-f 时删除)",
		},
		&cli.BoolFlag{
			Name:  "profile-cppstd-check",
			Value: Defaults.Profile.CppstdCheck,
			Usage: "检查 compiler.cppstd 是否被编译器版本支持",
		},
	}
}

// Env 单次调用的运行环境。
type Env struct {
	Config *config.Config
	Logger *slog.Logger
}

// Setup 加载配置并按日志配置创建 Logger。
//
// 配置顺序：默认值 → 配置文件 → 环境变量 → 全局 flags。
// 日志写入根命令的 ErrWriter。
func Setup(cmd *cli.Command) (*Env, error) {
	root := cmd.Root()

	opts := []config.Option{config.WithCommand(root)}
	if root.IsSet(ConfigFlag) {
		path := root.String(ConfigFlag)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		opts = append(opts, config.WithConfigPaths(path))
	}

	cfg, err := config.Load(config.DefaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	logCfg, err := logging.FromFlags(cfg.Log.Level, cfg.Log.Verbose, cfg.Log.Quiet)
	if err != nil {
		return nil, err
	}

	w := root.ErrWriter
	if w == nil {
		w = os.Stderr
	}

	return &Env{Config: cfg, Logger: logging.New(w, logCfg)}, nil
}

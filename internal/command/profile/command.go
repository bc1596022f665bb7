// Package profile 提供 set-profile 与 show-profile 命令。
package profile

import (
	"github.com/urfave/cli/v3"
)

// 可重复的 key=value flags 与其写入的 profile 分区。
var keyvalFlags = []struct {
	name    string
	aliases []string
	usage   string
}{
	{"setting", []string{"s"}, "setting 值 key=value，可重复"},
	{"option", []string{"o"}, "option 值 key=value，可重复"},
	{"conf", []string{"c"}, "conf 值 key=value，可重复"},
	{"build-requires", []string{"br"}, "构建依赖 pattern=reference，可重复"},
	{"tool-requires", []string{"tr"}, "工具依赖 pattern=reference，可重复"},
	{"env", []string{"e"}, "环境变量 NAME=value，可重复"},
	{"buildenv", []string{"be"}, "构建环境变量 NAME=value，可重复"},
	{"runenv", []string{"re"}, "运行环境变量 NAME=value，可重复"},
}

// NewSetCommand 返回 set-profile 命令。
func NewSetCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Required: true,
			Usage:    "profile 名称",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "覆盖已存在的 profile，并删除不合法的 settings",
		},
	}
	for _, f := range keyvalFlags {
		flags = append(flags, &cli.StringSliceFlag{
			Name:    f.name,
			Aliases: f.aliases,
			Usage:   f.usage,
		})
	}

	return &cli.Command{
		Name:  "set-profile",
		Usage: "生成 conan profile",
		Flags: flags,
		// conf 的值可能包含逗号，例如 tools.build:cxxflags=["-O2","-g"]
		DisableSliceFlagSeparator: true,
		Action:                    setAction,
	}
}

// NewShowCommand 返回 show-profile 命令。
func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show-profile",
		Usage: "输出已存在的 conan profile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Required: true,
				Usage:    "profile 名称",
			},
		},
		Action: showAction,
	}
}

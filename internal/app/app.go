// Package app 组装 cct 根命令。
package app

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-cct/internal/command"
	"github.com/lwmacct/251207-go-cct/internal/command/profile"
	"github.com/lwmacct/251207-go-cct/internal/version"
)

// New 返回新的根命令。每次调用都会创建独立的 flags 状态。
func New() *cli.Command {
	return &cli.Command{
		Name:  version.AppRawName,
		Usage: "Conan 配置工具：生成并校验 profile",
		Flags: command.GlobalFlags(),
		Commands: []*cli.Command{
			version.NewCommand(),
			profile.NewSetCommand(),
			profile.NewShowCommand(),
		},
	}
}

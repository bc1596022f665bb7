// Package version 提供构建版本信息与 version 子命令。
package version

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// AppRawName 应用名称。
const AppRawName = "cct"

// 通过 -ldflags "-X" 注入。
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// GetVersion 返回版本号，未注入时回退到模块构建信息。
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(devel)"
}

// NewCommand 返回打印版本信息的子命令。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "显示版本信息",
		Action: action,
	}
}

func action(_ context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintln(cmd.Root().Writer, String())

	return err
}

// String 返回 "cct <version> (<commit>, <time>)" 形式的描述。
func String() string {
	s := AppRawName + " " + GetVersion()
	switch {
	case Commit != "" && BuildTime != "":
		s += " (" + Commit + ", " + BuildTime + ")"
	case Commit != "":
		s += " (" + Commit + ")"
	}

	return s
}

// set-profile 是 "cct set-profile" 的独立入口，接受相同的全局 flags。
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lwmacct/251207-go-cct/internal/command"
	"github.com/lwmacct/251207-go-cct/internal/command/profile"
)

func main() {
	cmd := profile.NewSetCommand()
	cmd.Flags = append(command.GlobalFlags(), cmd.Flags...)

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("应用程序运行失败", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
)

// 构建时通过 -ldflags 设置
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "admin-server",
		Short:         "Admin management API server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// 不带子命令时直接启动服务
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (environment variables take precedence)")

	cmd.AddCommand(newServeCmd(&configFile))
	cmd.AddCommand(newAdminCmd(&configFile))

	return cmd
}

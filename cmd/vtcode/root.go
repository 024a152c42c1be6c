// Package main wires VTCode's eleven components into a cobra-based CLI
// shell, grounded on the teacher's cmd/picoclaw entrypoint and the pack's
// cobra-based goclaw cmd/root.go structure. Everything below this package is
// pure wiring; no component logic lives in cmd/vtcode.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vtcode/vtcode/pkg/config"
	"github.com/vtcode/vtcode/pkg/vtlog"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "vtcode",
	Short: "vtcode — interactive terminal coding agent",
	Long:  "vtcode drives an LLM conversation over a local workspace, mediating tool access through a governed safety gateway and tool executor.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			vtlog.SetLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $VTCODE_CONFIG or ~/.vtcode/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vtcode %s\n", version)
		},
	}
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	paths, err := config.ResolveRuntimePaths()
	if err != nil {
		return ""
	}
	return paths.ConfigPath
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

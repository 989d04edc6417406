// Package main provides the modelir CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/modelir/internal/envconfig"
	"github.com/born-ml/modelir/internal/logutil"
)

const version = "v0.1.0-dev"

func newRootCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	root := &cobra.Command{
		Use:           "modelir",
		Short:         "Parse and compile NNC and CGO models",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Once a command starts running, usage errors are no longer relevant
			cmd.SilenceUsage = true
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect MODEL",
		Short: "Show the graph of a model file",
		Args:  cobra.ExactArgs(1),
		RunE:  InspectHandler,
	}
	inspectCmd.Flags().String("validation", "", "IR validation level: strict, normal or none")
	inspectCmd.Flags().String("sha256", "", "Expected SHA-256 of the model file")
	inspectCmd.Flags().Bool("tensors", false, "List tensor records")

	compileCmd := &cobra.Command{
		Use:   "compile MODEL",
		Short: "Compile the CPU operator lists of a model file",
		Args:  cobra.ExactArgs(1),
		RunE:  CompileHandler,
	}
	compileCmd.Flags().String("validation", "", "IR validation level: strict, normal or none")
	compileCmd.Flags().String("sha256", "", "Expected SHA-256 of the model file")
	compileCmd.Flags().Bool("fp32", envconfig.ForceFP32, "Keep float32 precision even when the model allows float16")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "modelir %s\n", version)
		},
	}

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show the MODELIR_* configuration",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}

	root.AddCommand(inspectCmd, compileCmd, envCmd, versionCmd)
	return root
}

func main() {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel))
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

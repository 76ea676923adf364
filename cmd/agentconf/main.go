// Command agentconf compiles a layered agent configuration document into a
// normalized settings document.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"agentconf/internal/compiler"
	"agentconf/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agentconf",
		Short:         "Compile layered agent configuration into normalized settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCompileCmd())
	return cmd
}

func newCompileCmd() *cobra.Command {
	var (
		strict     bool
		outPath    string
		presetDirs []string
		searchDirs []string
		logLevel   string
		logFormat  string
		logFile    string
		quiet      bool
	)

	compileCmd := &cobra.Command{
		Use:   "compile <config-file>",
		Short: "Compile a configuration document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			logger := logging.Configure(logging.Options{
				Level:   logLevel,
				Format:  logFormat,
				LogPath: logFile,
				Quiet:   quiet,
			})

			c := compiler.New(compiler.Options{
				Strict:            strict,
				Log:               logger,
				BaseDir:           filepath.Dir(path),
				BuiltinPresetDirs: presetDirs,
				SearchDirs:        searchDirs,
			})

			compiled, err := c.Compile(cmd.Context(), data, path)
			if err != nil {
				return err
			}

			output, err := compiled.Marshal()
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(output)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			if err := os.WriteFile(outPath, output, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			return nil
		},
	}

	compileCmd.Flags().BoolVar(&strict, "strict", false, "raise recoverable errors instead of logging them")
	compileCmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to file instead of stdout")
	compileCmd.Flags().StringArrayVar(&presetDirs, "preset-dir", nil, "builtin preset directory (repeatable, searched in order)")
	compileCmd.Flags().StringArrayVar(&searchDirs, "search-dir", nil, "package-style preset/plugin search directory (repeatable)")
	compileCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	compileCmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	compileCmd.Flags().StringVar(&logFile, "log-file", "", "rotating log file path")
	compileCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress terminal log output")

	return compileCmd
}

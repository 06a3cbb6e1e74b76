package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/windmill/internal/config"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/logger"
)

var (
	configPath string
	debug      bool
	verbose    bool
	jsonLogs   bool
	quiet      bool
	version    = "v0.1.0"

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "windmill",
		Short: "Convert visual workflow documents to workflow programs and back",
		Long: `windmill compiles the workflow documents drawn in the editor (.wml) into
workflow programs, and decompiles programs back into documents with a fresh
layout.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(verbose || debug, jsonLogs, quiet)

			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			logger.Op.Debugf("Configuration: %+v", *cfg)
			return nil
		},
	}
)

// Execute runs the root command and prints failures for the terminal.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, werrors.FormatForCLI(err))
	}
	return err
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(decompileCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(checkCmd)
}

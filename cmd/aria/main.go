// Package main implements the aria CLI: parse, validate, and plan TOSCA
// and Cloudify service templates.
//
// Command implementations live in one file per verb:
//   - cmd_validate.go - validateCmd, parse + presentation validation
//   - cmd_template.go - templateCmd, deployment template derivation
//   - cmd_plan.go     - planCmd, plan instantiation (+ classic conversion)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duyamin/aria-ng/internal/config"
	"github.com/duyamin/aria-ng/internal/validation"
)

var (
	// Global flags
	verbose    bool
	configPath string
	inputsSpec string
	indent     int
	asYAML     bool
	asJSON     bool
	showTypes  bool
	showGraph  bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aria <command> <uri>",
	Short: "aria - TOSCA and Cloudify DSL parser and deployment planner",
	Long: `aria parses TOSCA Simple Profile and Cloudify DSL service templates,
validates them, derives a type-resolved deployment template, and
instantiates an executable deployment plan.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logCfg := zap.NewProductionConfig()
		if verbose {
			logCfg = zap.NewDevelopmentConfig()
		}
		logCfg.OutputPaths = []string{"stderr"}
		logger, err = logCfg.Build()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to aria.yaml (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&inputsSpec, "inputs", "", "Input values as JSON/YAML, or @<file>")
	rootCmd.PersistentFlags().IntVar(&indent, "indent", 2, "Dump indentation")
	rootCmd.PersistentFlags().BoolVar(&asYAML, "yaml", false, "Dump as YAML")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Dump as JSON")
	rootCmd.PersistentFlags().BoolVar(&showTypes, "types", false, "Dump type hierarchies instead of the template")
	rootCmd.PersistentFlags().BoolVar(&showGraph, "graph", false, "Dump the plan as a node graph")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(planCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aria: %v\n", err)
		os.Exit(1)
	}
}

// threshold resolves the configured failure threshold.
func threshold() validation.Level {
	return validation.ParseLevel(cfg.Threshold)
}

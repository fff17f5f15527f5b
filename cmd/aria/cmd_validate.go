package main

import (
	"github.com/spf13/cobra"

	"github.com/duyamin/aria-ng/internal/consumption"
)

var validateCmd = &cobra.Command{
	Use:   "validate <uri>",
	Short: "Parse a service template and validate its presentation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContext()
		if err != nil {
			return err
		}
		parse(cmd.Context(), c, args[0])
		if !c.Halted() {
			consumption.ValidatePresentation{}.Consume(c)
		}
		return reportIssues(c)
	},
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/duyamin/aria-ng/internal/consumption"
)

var templateCmd = &cobra.Command{
	Use:   "template <uri>",
	Short: "Derive the deployment template and dump it",
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
		if !c.Halted() {
			consumption.NewTemplateChain().Consume(c)
		}
		if err := reportIssues(c); err != nil {
			return err
		}
		return c.DumpTemplate()
	},
}

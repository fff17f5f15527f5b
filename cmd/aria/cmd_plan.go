package main

import (
	"github.com/spf13/cobra"

	"github.com/duyamin/aria-ng/internal/cloudify"
	"github.com/duyamin/aria-ng/internal/consumption"
	"github.com/duyamin/aria-ng/internal/reading"
)

var classic bool

func init() {
	planCmd.Flags().BoolVar(&classic, "classic", false, "Emit the classic Cloudify plan shape")
}

var planCmd = &cobra.Command{
	Use:   "plan <uri>",
	Short: "Instantiate the deployment plan and dump it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContext()
		if err != nil {
			return err
		}
		c.LegacyGroupMembers = cfg.LegacyGroupMembers
		parse(cmd.Context(), c, args[0])
		if !c.Halted() {
			consumption.ValidatePresentation{}.Consume(c)
		}
		if !c.Halted() {
			consumption.NewTemplateChain().Consume(c)
		}
		if !c.Halted() {
			consumption.NewPlanChain().Consume(c)
		}
		if classic && !c.Halted() {
			cloudify.ClassicPlan{}.Consume(c)
		}
		if err := reportIssues(c); err != nil {
			return err
		}
		if classic && c.Modeling.ClassicPlan != nil {
			out, err := reading.MarshalJSON(c.Modeling.ClassicPlan, c.Options.Indent)
			if err != nil {
				return err
			}
			_, err = c.Out.Write(out)
			return err
		}
		return c.DumpPlan()
	},
}

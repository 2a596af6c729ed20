package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
)

var objectivesCmd = &cobra.Command{
	Use:     "objectives",
	Aliases: []string{"obj"},
	Short:   "Manage the objective list of the saved board",
}

var objectivesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List objectives; achieved ones are marked with ✓",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ context.Context, sess *session.Session) error {
			for _, e := range sess.Objectives() {
				mark := " "
				if e.Status == bingo.StatusComplete {
					mark = "✓"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, e.Label)
			}
			return nil
		})
	},
}

var objectivesAddCmd = &cobra.Command{
	Use:   "add LABEL",
	Short: "Add an objective",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, sess *session.Session) error {
			added, err := sess.AddObjective(ctx, args[0])
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is already listed\n", args[0])
			}
			return nil
		})
	},
}

var objectivesRemoveCmd = &cobra.Command{
	Use:   "remove LABEL",
	Short: "Remove an objective that is not on the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, sess *session.Session) error {
			removed, err := sess.RemoveObjective(ctx, args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is not listed\n", args[0])
			}
			return nil
		})
	},
}

var objectivesMarkCmd = &cobra.Command{
	Use:   "mark LABEL",
	Short: "Mark an objective achieved so wipes leave it out (--clear to undo)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := bingo.StatusComplete
		if unset, _ := cmd.Flags().GetBool("clear"); unset {
			st = bingo.StatusIncomplete
		}
		return withSession(cmd, func(ctx context.Context, sess *session.Session) error {
			return sess.SetObjectiveStatus(ctx, args[0], st)
		})
	},
}

func init() {
	objectivesMarkCmd.Flags().Bool("clear", false, "clear the achieved marker")
	objectivesCmd.AddCommand(objectivesListCmd, objectivesAddCmd, objectivesRemoveCmd, objectivesMarkCmd)
	rootCmd.AddCommand(objectivesCmd)
}

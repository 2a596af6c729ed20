package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/render"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withSession(cmd, func(_ context.Context, sess *session.Session) error {
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sess.View())
			}
			printBoard(cmd, sess)
			return nil
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle ROW COL",
	Short: "Mark a cell done, or not done again",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, col, err := cellArgs(args)
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, sess *session.Session) error {
			st, err := sess.Toggle(ctx, row, col)
			if err != nil {
				return err
			}
			word := "not done"
			if st == bingo.StatusComplete {
				word = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cell (%d,%d) %s\n", row, col, word)
			return nil
		})
	},
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Move the cells around; progress moves with them",
	Args:  cobra.NoArgs,
	RunE:  boardOp((*session.Session).Shuffle),
}

var replaceCmd = &cobra.Command{
	Use:   "replace ROW COL",
	Short: "Replace one cell with a random unused objective, or with --label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, col, err := cellArgs(args)
		if err != nil {
			return err
		}
		label, _ := cmd.Flags().GetString("label")
		return withSession(cmd, func(ctx context.Context, sess *session.Session) error {
			if err := sess.Replace(ctx, row, col, label == "", label); err != nil {
				return err
			}
			printBoard(cmd, sess)
			return nil
		})
	},
}

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "Pick a new featured item for the center cell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		label, _ := cmd.Flags().GetString("label")
		return withSession(cmd, func(ctx context.Context, sess *session.Session) error {
			if err := sess.ReplaceFeatured(ctx, label == "", label); err != nil {
				return err
			}
			printBoard(cmd, sess)
			return nil
		})
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Generate a new board from the objectives not yet achieved",
	Args:  cobra.NoArgs,
	RunE:  boardOp((*session.Session).Wipe),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all progress and generate a new board",
	Args:  cobra.NoArgs,
	RunE:  boardOp((*session.Session).Reset),
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the objective list to FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(_ context.Context, sess *session.Session) error {
			return sess.ExportList(args[0])
		})
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "print the board as JSON")
	replaceCmd.Flags().StringP("label", "l", "", "objective to put in the cell")
	featuredCmd.Flags().StringP("label", "l", "", "featured item to put in the center")

	rootCmd.AddCommand(showCmd, toggleCmd, shuffleCmd, replaceCmd, featuredCmd, wipeCmd, resetCmd, exportCmd)
}

// boardOp runs a body-less session operation and prints the result.
func boardOp(op func(*session.Session, context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd, func(ctx context.Context, sess *session.Session) error {
			if err := op(sess, ctx); err != nil {
				return err
			}
			printBoard(cmd, sess)
			return nil
		})
	}
}

func printBoard(cmd *cobra.Command, sess *session.Session) {
	fmt.Fprintln(cmd.OutOrStdout(), render.Board(sess.View(), render.Options{NoCursor: true}))
}

func cellArgs(args []string) (row, col int, err error) {
	if row, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("row %q: %w", args[0], err)
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("col %q: %w", args[1], err)
	}
	return row, col, nil
}

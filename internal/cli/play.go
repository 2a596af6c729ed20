package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OriginOfChaos/Bearathon5/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the saved board in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("bingo play requires a terminal; use \"bingo show\" instead")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(sess.Store())

	// The board owns the screen; only errors get through.
	if zerolog.GlobalLevel() < zerolog.ErrorLevel {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
	log.Debug().Msg("starting terminal board")

	p := tui.NewProgram(ctx, sess)
	if w := startWatcher(ctx, cfg, sess, func() { p.Send(tui.MsgReloaded{}) }); w != nil {
		defer w.Stop()
	}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

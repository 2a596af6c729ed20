package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/daily"
	"github.com/OriginOfChaos/Bearathon5/internal/objectives"
	"github.com/OriginOfChaos/Bearathon5/internal/render"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
	"github.com/OriginOfChaos/Bearathon5/internal/store"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new board from an objective list",
	Long: `Generate a new board from an objective file (one objective per line,
anything after a µ is ignored) and write it to the save file.

With --daily the board is seeded from the date, so everyone using the same
objective file and salt on the same day gets the same board.`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	f := newCmd.Flags()
	f.StringP("objectives", "o", "", "objective list file")
	f.IntP("size", "s", 0, "grid size (default 5)")
	f.Bool("featured", true, "reserve the center cell for a featured item")
	f.Uint64("seed", 0, "seed for a reproducible board")
	f.Bool("daily", false, "seed the board from the date")
	f.String("date", "", "date for --daily, YYYY-MM-DD (default today)")
	f.Bool("force", false, "overwrite an existing board")

	_ = viper.BindPFlag("objective_file", f.Lookup("objectives"))
	_ = viper.BindPFlag("size", f.Lookup("size"))
	_ = viper.BindPFlag("featured", f.Lookup("featured"))
	_ = viper.BindPFlag("seed", f.Lookup("seed"))
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ObjectiveFile == "" {
		return errors.New("no objective file: pass --objectives or set objective_file")
	}
	labels, err := objectives.ReadFile(cfg.ObjectiveFile)
	if err != nil {
		return err
	}
	featured, err := objectives.Featured(cfg.FeaturedFile)
	if err != nil {
		return fmt.Errorf("featured list: %w", err)
	}

	opts := randOption(cfg)
	if isDaily, _ := cmd.Flags().GetBool("daily"); isDaily {
		ds, _ := cmd.Flags().GetString("date")
		day, err := daily.ParseDate(ds, time.Now())
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		key := daily.DateKey(day)
		opts = []bingo.Option{
			bingo.WithRand(bingo.NewRand(daily.Seed(day, cfg.DailySalt))),
			bingo.WithID("daily-" + key),
		}
		log.Debug().Str("date", key).Msg("daily board")
	}

	st, err := store.Open(cfg.SaveFile)
	if err != nil {
		return err
	}
	defer closeStore(st)

	force, _ := cmd.Flags().GetBool("force")
	if _, err := st.Load(cmd.Context()); err == nil && !force {
		return fmt.Errorf("%s already holds a board: use --force to replace it", cfg.SaveFile)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) && !force {
		return err
	}

	sess, err := session.Create(cmd.Context(), st, bingo.Config{Size: cfg.Size, Featured: cfg.Featured}, labels, featured, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Board(sess.View(), render.Options{NoCursor: true}))
	return nil
}

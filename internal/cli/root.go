// Package cli implements the bingo command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/config"
	"github.com/OriginOfChaos/Bearathon5/internal/objectives"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
	"github.com/OriginOfChaos/Bearathon5/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "bingo",
	Short: "Bingo board generator and tracker",
	Long: `bingo builds a square bingo board from a list of objectives, tracks which
cells are done and keeps the board in a save file. Use "bingo play" for the
terminal board and "bingo serve" for the browser board.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default "+config.FileName+")")
	pf.StringP("file", "f", "", "save file (.json, or .db/.sqlite for SQLite)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("featured-file", "", "featured item list (default: bundled list)")

	_ = viper.BindPFlag("save_file", pf.Lookup("file"))
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("featured_file", pf.Lookup("featured-file"))
	_ = viper.BindEnv("log_level", "BINGO_LOG_LEVEL", "LOG_LEVEL")
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".bingo")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("BINGO")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// setupLogging installs a console logger on w at the configured level.
func setupLogging(w io.Writer) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	if f := viper.ConfigFileUsed(); f != "" {
		log.Debug().Str("file", f).Msg("config loaded")
	}
	return nil
}

func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// openSession opens the board saved in the configured save file.
func openSession(ctx context.Context, cfg config.Config) (*session.Session, error) {
	featured, err := objectives.Featured(cfg.FeaturedFile)
	if err != nil {
		return nil, fmt.Errorf("featured list: %w", err)
	}
	st, err := store.Open(cfg.SaveFile)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(ctx, st, featured, randOption(cfg)...)
	if errors.Is(err, store.ErrNotFound) {
		closeStore(st)
		return nil, fmt.Errorf("no board in %s: run \"bingo new\" first", cfg.SaveFile)
	}
	if err != nil {
		closeStore(st)
		return nil, err
	}
	return sess, nil
}

// randOption seeds the board's random source when a seed is configured.
func randOption(cfg config.Config) []bingo.Option {
	if cfg.Seed == 0 {
		return nil
	}
	return []bingo.Option{bingo.WithRand(bingo.NewRand(cfg.Seed))}
}

func closeStore(st store.Store) {
	if c, ok := st.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Str("file", st.Path()).Msg("close store")
		}
	}
}

// withSession runs fn against the saved board and closes the store.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, sess *session.Session) error) error {
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
	return fn(ctx, sess)
}

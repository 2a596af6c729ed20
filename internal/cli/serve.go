package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OriginOfChaos/Bearathon5/internal/config"
	"github.com/OriginOfChaos/Bearathon5/internal/httpserver"
	"github.com/OriginOfChaos/Bearathon5/internal/session"
	"github.com/OriginOfChaos/Bearathon5/internal/store"
	"github.com/OriginOfChaos/Bearathon5/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board to a local browser",
	Long: `Serve the saved board on a loopback address. The printed URL carries a
launch token; open it once and the browser keeps the token in a cookie.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:5175)")
	serveCmd.Flags().Bool("watch", true, "reload the board when the save file changes")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("watch", serveCmd.Flags().Lookup("watch"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(sess.Store())

	if w := startWatcher(ctx, cfg, sess, nil); w != nil {
		defer w.Stop()
	}

	auth, err := httpserver.NewLauncher(cfg.TokenSecret)
	if err != nil {
		return err
	}
	return httpserver.New(sess, auth).Start(ctx, cfg.Addr)
}

// startWatcher reloads sess when another process rewrites its save file and
// then calls changed. Only JSON save files are watched. It returns nil when
// watching is off or unavailable.
func startWatcher(ctx context.Context, cfg config.Config, sess *session.Session, changed func()) *watch.Watcher {
	if !cfg.Watch {
		return nil
	}
	if _, ok := sess.Store().(*store.File); !ok {
		return nil
	}
	w, err := watch.New(sess.Store().Path(), func() {
		reloaded, err := sess.Reload(ctx)
		if err != nil {
			log.Warn().Err(err).Str("file", sess.Store().Path()).Msg("reload board")
			return
		}
		if reloaded && changed != nil {
			changed()
		}
	})
	if err != nil {
		log.Warn().Err(err).Msg("file watcher unavailable")
		return nil
	}
	if err := w.Start(); err != nil {
		log.Warn().Err(err).Msg("file watcher unavailable")
		return nil
	}
	log.Debug().Str("file", w.File).Msg("watching save file")
	return w
}

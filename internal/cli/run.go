package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rovelle/charbot/internal/catalog"
	"github.com/rovelle/charbot/internal/config"
	"github.com/rovelle/charbot/internal/console"
	"github.com/rovelle/charbot/internal/greenapi"
	"github.com/rovelle/charbot/internal/llm"
	"github.com/rovelle/charbot/internal/logging"
	"github.com/rovelle/charbot/internal/poller"
	"github.com/rovelle/charbot/internal/session"
	"github.com/rovelle/charbot/internal/transcript"
)

func newRunCmd() *cobra.Command {
	var (
		character   string
		consolePort int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot polling loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if character != "" {
				cfg.Characters.Default = character
			}
			if consolePort != 0 {
				cfg.Console.Port = consolePort
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			// The flag wins over the config file for log level.
			if logLevel == "" && cfg.Logging.Level != "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			// An empty character catalog is fatal: the bot has no persona
			// to answer as.
			charDir := cfg.Characters.Dir
			if charDir == "" {
				charDir = paths.Characters
			}
			cat, err := catalog.Load(charDir, cfg.Characters.Default, log)
			if err != nil {
				return fmt.Errorf("loading character catalog: %w", err)
			}
			log.Info().
				Int("characters", cat.Len()).
				Str("default", cat.Default().ID).
				Msg("character catalog loaded")

			registry := llm.NewRegistryFromConfig(cfg.Answerer, log)
			client, err := registry.Resolve(cfg.Answerer.Provider)
			if err != nil {
				return err
			}
			answerer := llm.NewAnswerer(client, cfg.Answerer.Model, cfg.Answerer.MaxTokens, log)

			store := session.NewMemoryStore(cfg.Session.Capacity)
			router := session.NewRouter(store, cat, answerer, log)

			gw := greenapi.NewClient(cfg.Gateway, log)
			dispatcher := poller.NewDispatcher(gw, log)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var opts []poller.Option

			if cfg.Transcript.Store == "sqlite" {
				dbPath := filepath.Join(paths.Data, "transcript.db")
				db, err := transcript.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening transcript database: %w", err)
				}
				defer db.Close()
				opts = append(opts, poller.WithRecorder(transcript.NewRecorder(db)))
			}

			if cfg.Console.Port > 0 {
				broker := poller.NewBroker()
				opts = append(opts, poller.WithBroker(broker))
				srv := console.New(cfg.Console, broker, router, cat, log)
				go func() {
					if err := srv.Start(ctx); err != nil {
						log.Error().Err(err).Msg("console server failed")
					}
				}()
			}

			p := poller.New(gw, router, dispatcher, log, opts...)
			if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&character, "character", "", "override the default character id")
	cmd.Flags().IntVar(&consolePort, "console-port", 0, "override the console port")

	return cmd
}

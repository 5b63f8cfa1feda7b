package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rovelle/charbot/internal/catalog"
	"github.com/rovelle/charbot/internal/config"
	"github.com/rovelle/charbot/internal/llm"
	"github.com/rovelle/charbot/internal/session"
)

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Send and manage messages",
	}

	cmd.AddCommand(newMessageSendCmd())
	return cmd
}

func newMessageSendCmd() *cobra.Command {
	var character string

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Run one local conversation turn and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			cfg, err := config.Load(paths.Config)
			if err != nil {
				cfg = config.Defaults()
			}

			charDir := cfg.Characters.Dir
			if charDir == "" {
				charDir = paths.Characters
			}
			cat, err := catalog.Load(charDir, cfg.Characters.Default, log)
			if err != nil {
				return fmt.Errorf("loading character catalog: %w", err)
			}

			// An unknown requested id silently falls back to the default.
			char := cat.Default()
			if character != "" {
				char = cat.Get(character)
			}

			registry := llm.NewRegistryFromConfig(cfg.Answerer, log)
			client, err := registry.Resolve(cfg.Answerer.Provider)
			if err != nil {
				return err
			}
			answerer := llm.NewAnswerer(client, cfg.Answerer.Model, cfg.Answerer.MaxTokens, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conv := session.NewConversation(session.NewID(), "User", char, answerer)
			reply, err := conv.Answer(ctx, message)
			if err != nil {
				return err
			}

			fmt.Println(reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&character, "character", "", "character id to answer as")

	return cmd
}

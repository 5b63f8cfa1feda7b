package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rovelle/charbot/internal/catalog"
	"github.com/rovelle/charbot/internal/config"
	"github.com/rovelle/charbot/internal/llm"
	"github.com/rovelle/charbot/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show charbot status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("charbot %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Printf("Config:     %s\n", paths.Config)
			fmt.Printf("Characters: %s\n", paths.Characters)
			fmt.Printf("Data:       %s\n", paths.Data)
			fmt.Println()

			// Load config
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Printf("Config:     error loading: %v\n", err)
				return nil
			}

			// Gateway config
			if cfg.Gateway.InstanceID != "" {
				fmt.Printf("Gateway:    instance=%s baseUrl=%s\n",
					cfg.Gateway.InstanceID, cfg.Gateway.BaseURL)
			} else {
				fmt.Println("Gateway:    (not configured)")
			}

			// Answerer
			registry := llm.NewRegistryFromConfig(cfg.Answerer, log)
			providers := registry.List()
			if len(providers) > 0 {
				fmt.Printf("Answerer:   provider=%s model=%s\n",
					strings.Join(providers, ", "), cfg.Answerer.Model)
			} else {
				fmt.Println("Answerer:   (none configured)")
			}

			// Session store
			if cfg.Session.Capacity > 0 {
				fmt.Printf("Sessions:   memory, capacity=%d (LRU)\n", cfg.Session.Capacity)
			} else {
				fmt.Println("Sessions:   memory, unbounded")
			}

			// Transcript
			fmt.Printf("Transcript: %s\n", cfg.Transcript.Store)

			// Console
			if cfg.Console.Port > 0 {
				fmt.Printf("Console:    127.0.0.1:%d\n", cfg.Console.Port)
			} else {
				fmt.Println("Console:    disabled")
			}

			// Characters
			charDir := cfg.Characters.Dir
			if charDir == "" {
				charDir = paths.Characters
			}
			if cat, err := catalog.Load(charDir, cfg.Characters.Default, log); err == nil {
				var ids []string
				for _, c := range cat.List() {
					ids = append(ids, c.ID)
				}
				fmt.Printf("Characters: %s (default: %s)\n",
					strings.Join(ids, ", "), cat.Default().ID)
			} else {
				fmt.Printf("Characters: %v\n", err)
			}

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovelle/charbot/internal/catalog"
	"github.com/rovelle/charbot/internal/config"
)

func newCharactersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "characters",
		Short: "List available character profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
				return err
			}

			defaultID := cat.Default().ID
			for _, c := range cat.List() {
				marker := " "
				if c.ID == defaultID {
					marker = "*"
				}
				fmt.Printf("%s %-20s %s\n", marker, c.ID, c.Name)
			}
			return nil
		},
	}

	return cmd
}

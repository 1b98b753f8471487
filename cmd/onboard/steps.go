package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/internal/presentation/graph"
	"github.com/aretw0/onboard/internal/runtime"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Export the step graph as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the wizard steps. With --session,
the steps visited by a stored wizard and its current step are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		var overlay *graph.Overlay
		if sessionID != "" {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			state, err := loadState(cmd, cfg, sessionID)
			if err != nil {
				return err
			}
			overlay = graph.OverlayOf(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(runtime.RegistrationGraph(), overlay))
		return nil
	},
}

// loadState reads one wizard straight from the configured store.
func loadState(cmd *cobra.Command, cfg *config.Config, sessionID string) (*domain.State, error) {
	a := &app{}
	defer a.Close()

	store, _, err := a.openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	state, err := store.Load(cmd.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("no wizard stored under %q in the %s store", sessionID, cfg.Store)
	}
	return state, err
}

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.Flags().String("session", "", "Highlight the progress of a stored wizard")
}

package main

import (
	"fmt"

	"github.com/aretw0/dialectic/internal/cli"
	"github.com/aretw0/dialectic/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <graph-id>",
	Short: "Export a dialogue graph as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the dialogue graph.
With --slot, the stages visited in that save are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		eng, err := openEngine(cmd, cfg, logger)
		if err != nil {
			return err
		}

		g, err := eng.Graph(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if slot, _ := cmd.Flags().GetString("slot"); slot != "" {
			saves, err := cli.OpenSaves(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer saves.Close()

			snap, err := saves.Manager.Load(cmd.Context(), slot)
			if err != nil {
				return err
			}
			if snap.Session != nil && snap.Session.GraphID == g.ID {
				overlay = graph.OverlayFromSession(snap.Session)
			} else {
				logger.Warn("save does not belong to this graph; overlay skipped", "slot", slot, "graph", g.ID)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("slot", "", "Highlight the path recorded in this save slot")
}

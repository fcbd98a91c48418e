package main

import (
	"fmt"

	"github.com/aretw0/dialectic"
	"github.com/aretw0/dialectic/internal/cli"
	"github.com/aretw0/dialectic/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the dialogue engine over the Model Context Protocol",
	Long: `Exposes one dialogue engine as MCP tools (list_graphs, start_dialogue, select_option,
take_tangent, strategic_action, end_dialogue) so an agent can play through content.
Serves on stdio by default, or over SSE with --sse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		eng, err := openEngine(cmd, cfg, logger)
		if err != nil {
			return err
		}

		srv := mcp.NewServer(eng, eng.Content(), dialectic.Version, mcp.WithLogger(logger))

		addr, _ := cmd.Flags().GetString("sse")
		if addr == "" {
			return srv.ServeStdio()
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		baseURL, _ := cmd.Flags().GetString("base-url")
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost%s", addr)
		}
		return srv.ServeSSE(ctx, addr, baseURL)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("sse", "", "Serve over SSE on this address (e.g. :8090) instead of stdio")
	mcpCmd.Flags().String("base-url", "", "Public base URL for SSE clients")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph-id...]",
	Short: "Check dialogue graphs for consistency",
	Long: `Loads every graph (or the named ones) and reports broken links, unreachable
stages, dead ends, conversations that can never finish and unknown speakers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		eng, err := openEngine(cmd, cfg, logger)
		if err != nil {
			return err
		}

		ids := args
		if len(ids) == 0 {
			if ids, err = eng.Graphs(); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range ids {
			report, err := eng.Validate(id)
			if err != nil {
				fmt.Fprintf(out, "✗ %s: %v\n", id, err)
				failed++
				continue
			}
			if report.HasErrors() {
				failed++
				fmt.Fprintf(out, "✗ %s\n", id)
			} else {
				fmt.Fprintf(out, "✓ %s\n", id)
			}
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "    %s\n", issue)
			}
		}

		if failed > 0 {
			return fmt.Errorf("validation failed for %d of %d graphs", failed, len(ids))
		}
		fmt.Fprintln(out, "All graphs are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

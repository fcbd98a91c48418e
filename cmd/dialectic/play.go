package main

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/dialectic/internal/cli"
	"github.com/aretw0/dialectic/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <graph-id>",
	Short: "Play a dialogue in the terminal",
	Long: `Starts an interactive dialogue. With --slot the dialogue resumes from that save
if it exists, and is saved back to it when you leave.`,
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

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		saves, err := cli.OpenSaves(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer saves.Close()

		width := tui.DefaultWidth
		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		if interactive {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
		console := tui.NewConsole(cmd.OutOrStdout(), width)
		if !interactive {
			console.Profile = termenv.Ascii
			console.Markdown = tui.PlainText
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); interactive && !quiet {
			tui.PrintBanner(console.Out, console.Profile)
		}

		slot, _ := cmd.Flags().GetString("slot")
		graphID := args[0]
		if slot != "" {
			resumed, err := saves.Manager.ResumeOrStart(ctx, slot, eng, func(c context.Context) error {
				return eng.StartDialogue(c, graphID)
			})
			if err != nil {
				return err
			}
			if resumed {
				console.Notice("Resumed slot %s.", slot)
			}
		} else if err := eng.StartDialogue(ctx, graphID); err != nil {
			return err
		}

		player := &cli.Player{Engine: eng, Console: console, Slots: saves.Manager, Logger: logger}
		err = player.Play(ctx, cmd.InOrStdin())

		if slot != "" && eng.Session() != nil {
			if _, saveErr := saves.Manager.Checkpoint(context.WithoutCancel(ctx), slot, eng); saveErr != nil {
				logger.Error("autosave failed", "slot", slot, "err", saveErr)
			} else {
				console.Notice("Saved to slot %s.", slot)
			}
		}

		if errors.Is(err, context.Canceled) {
			if sig := ctx.Signal(); sig != nil {
				console.Notice("Interrupted (%s).", sig)
			}
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("slot", "", "Save slot to resume from and save to")
	playCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}

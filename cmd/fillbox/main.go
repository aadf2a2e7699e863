// Package main provides the CLI entrypoint for fillbox.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/fillbox/internal/model"
	"github.com/verte-zerg/fillbox/internal/tui"
)

var (
	playMode  string
	playBoxes int
	playList  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fillbox",
		Short:         "Fill-in-the-box word, number and letter practice",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", "", "practice mode: words, numbers or letters")
	rootCmd.Flags().IntVar(&playBoxes, "boxes", 0, "boxes per round")
	rootCmd.Flags().StringVar(&playList, "list", "", "content list id to play")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newListsCmd())
	rootCmd.AddCommand(newAchievementsCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.settings.Apply(a.sess.Config())
	if cmd.Flags().Changed("mode") {
		mode, ok := model.ParseMode(playMode)
		if !ok {
			return fmt.Errorf("--mode must be words, numbers or letters")
		}
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("boxes") {
		cfg.BoxesPerRound = playBoxes
	}
	if cfg != a.sess.Config() {
		if err := a.sess.UpdateConfig(ctx, cfg); err != nil {
			return fmt.Errorf("failed to apply settings: %w", err)
		}
	}
	if playList != "" {
		if err := a.sess.SelectList(ctx, playList); err != nil {
			return fmt.Errorf("failed to select list: %w", err)
		}
	}
	if a.sess.Selected() == "" {
		if err := a.sess.SetMode(ctx, cfg.Mode); err != nil {
			return fmt.Errorf("failed to select a default list: %w", err)
		}
	}

	program := tea.NewProgram(tui.NewModel(a.sess, a.log.With("component", "tui")), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/fillbox/internal/config"
	"github.com/verte-zerg/fillbox/internal/model"
	"github.com/verte-zerg/fillbox/internal/report"
	"github.com/verte-zerg/fillbox/internal/wordlist"
)

var (
	importTitle string
	importMode  string
	importID    string

	createMode string
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if v := os.Getenv("FILLBOX_CONFIG"); v != "" {
		path = v
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newListsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show content lists",
		Args:  cobra.NoArgs,
		RunE:  runListsCmd,
	}
	cmd.AddCommand(newListsShowCmd())
	cmd.AddCommand(newListsCreateCmd())
	cmd.AddCommand(newListsImportCmd())
	cmd.AddCommand(newListsDeleteCmd())
	return cmd
}

func runListsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	all, err := a.sess.Lists(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load lists: %w", err)
	}
	out := cmd.OutOrStdout()
	return report.RenderLists(out, all, a.sess.Selected(), report.Width(out))
}

func newListsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show the items of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			list, err := a.sess.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return report.RenderList(out, list, report.Width(out))
		},
	}
}

func newListsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create an empty list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := model.ParseMode(createMode)
			if !ok {
				return fmt.Errorf("--mode must be words, numbers or letters")
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			list, err := a.sess.CreateList(cmd.Context(), args[0], mode)
			if err != nil {
				return fmt.Errorf("failed to create list: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", list.Title, list.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&createMode, "mode", "words", "list mode: words, numbers or letters")
	return cmd
}

func newListsImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a list from a text file (one key per line, optional TAB decoration)",
		Args:  cobra.ExactArgs(1),
		RunE:  runListsImportCmd,
	}
	cmd.Flags().StringVar(&importTitle, "title", "", "list title (default: file name)")
	cmd.Flags().StringVar(&importMode, "mode", "words", "list mode: words, numbers or letters")
	cmd.Flags().StringVar(&importID, "id", "", "list id; an existing list with this id is replaced")
	return cmd
}

func runListsImportCmd(cmd *cobra.Command, args []string) error {
	mode, ok := model.ParseMode(importMode)
	if !ok {
		return fmt.Errorf("--mode must be words, numbers or letters")
	}
	path := args[0]
	entries, err := wordlist.LoadEntries(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	items, skipped := wordlist.BuildItems(entries, mode)
	if len(items) == 0 {
		return fmt.Errorf("no usable %s keys in %s", mode.Label(), path)
	}

	title := importTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	id := importID
	if id == "" {
		created, err := a.sess.CreateList(ctx, title, mode)
		if err != nil {
			return fmt.Errorf("failed to create list: %w", err)
		}
		id = created.ID
	}
	saved, err := a.sess.SaveList(ctx, model.ContentList{ID: id, Title: title, Mode: mode, Items: items})
	if err != nil {
		return fmt.Errorf("failed to save list: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items into %s (%s)\n", len(saved.Items), saved.Title, saved.ID); err != nil {
		return err
	}
	if skipped > 0 {
		logErrf("Skipped %d lines that are not valid %s keys\n", skipped, mode.Label())
	}
	return nil
}

func newListsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.sess.DeleteList(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete list: %w", err)
			}
			return nil
		},
	}
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Show earned badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			badges, err := a.sess.Achievements(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load achievements: %w", err)
			}
			return report.RenderAchievements(cmd.OutOrStdout(), badges)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return report.RenderRound(cmd.OutOrStdout(), a.sess.Round())
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Abandon the active round",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.sess.ClearRound(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear round: %w", err)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export config, lists and achievements as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			snap, err := a.sess.Export(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			raw, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}
			raw = append(raw, '\n')
			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}
			return writeFileAtomic(args[0], raw)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a JSON export; present fields overwrite, the active round is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var snap model.Snapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.sess.Import(cmd.Context(), snap); err != nil {
				return fmt.Errorf("failed to import: %w", err)
			}
			return nil
		},
	}
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "fillbox-export-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

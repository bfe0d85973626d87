package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vcpc/helpdesk/internal/ui"
)

// confirmPrompt asks the operator to approve a destructive action.
func confirmPrompt(prompt string) bool {
	var confirmed bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Continue").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false
	}
	return confirmed
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Factory reset: clear every collection and setting",
	Long: `Clear all collections and settings from the local store.

A JSON backup is written next to the database first unless --no-backup is
set. The next startup re-runs the full initialization sequence, including
default seeding.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, st, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			if !confirmPrompt("This erases all local helpdesk data. Continue?") {
				fmt.Printf("%s reset cancelled\n", ui.RenderFaint("·"))
				return nil
			}
		}

		if noBackup, _ := cmd.Flags().GetBool("no-backup"); !noBackup {
			snap, err := st.Export(cmd.Context())
			if err != nil {
				return err
			}
			backup := filepath.Join(filepath.Dir(st.Path()),
				fmt.Sprintf("helpdesk_backup_%s.json", time.Now().Format("2006-01-02")))
			if err := writeBackup(snap, backup); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}
			fmt.Printf("%s backup written to %s\n", ui.RenderFaint("·"), backup)
		}

		if err := svc.FactoryReset(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("%s store cleared\n", ui.RenderSuccess("✓"))
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	resetCmd.Flags().Bool("no-backup", false, "skip the automatic backup")
	rootCmd.AddCommand(resetCmd)
}

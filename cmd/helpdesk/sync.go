package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vcpc/helpdesk/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull remote state now",
	Long: `Force a one-shot pull from the configured bridge.

Local collections are overwritten with whatever the remote returns.
Collections absent from the remote response are left untouched. A failed
pull changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		if !svc.ForceSync(cmd.Context()) {
			fmt.Printf("%s sync did not apply (no bridge configured, or the pull failed)\n", ui.RenderError("✗"))
			return nil
		}
		fmt.Printf("%s remote state pulled\n", ui.RenderSuccess("✓"))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store counts, bridges, and last sync time",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		status, err := svc.Status(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", ui.RenderAccent("helpdesk store"))
		fmt.Printf("  initialized: %v\n", status.Initialized)
		fmt.Printf("  tickets: %d  users: %d  assets: %d  logs: %d\n",
			status.Tickets, status.Users, status.Assets, status.Logs)
		fmt.Printf("  size: %.2f KB\n", float64(status.StoreBytes)/1024)

		if status.LastSync.IsZero() {
			fmt.Printf("  last sync: %s\n", ui.RenderFaint("never"))
		} else {
			fmt.Printf("  last sync: %s\n", status.LastSync.Local().Format(time.RFC1123))
		}

		fmt.Printf("%s\n", ui.RenderAccent("bridges"))
		printBridge("sheet", status.SheetURL)
		printBridge("rest", status.RestURL)
		printBridge("static", status.StaticURL)
		return nil
	},
}

func printBridge(kind, url string) {
	if url == "" {
		fmt.Printf("  %s: %s\n", kind, ui.RenderFaint("not configured"))
		return
	}
	fmt.Printf("  %s: %s\n", kind, url)
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vcpc/helpdesk/internal/bridge"
	"github.com/vcpc/helpdesk/internal/model"
	"github.com/vcpc/helpdesk/internal/snapshot"
	"github.com/vcpc/helpdesk/internal/syncd"
	"github.com/vcpc/helpdesk/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local dataset",
	Long: `Export all four collections.

By default prints a URL-safe snapshot token suitable for a share link.
With --json, writes the dataset as indented JSON instead (a backup file).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, st, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		snap, err := st.Export(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		token, err := snapshot.Encode(snap)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <token>",
	Short: "Import a snapshot token, overwriting local data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		declined := false
		opts := syncd.StartupOptions{
			SyncDataToken: args[0],
			Confirm: func(prompt string) bool {
				ok := confirmPrompt(prompt)
				declined = !ok
				return ok
			},
		}
		if yes, _ := cmd.Flags().GetBool("yes"); yes {
			opts.Confirm = func(string) bool { return true }
		}

		if err := svc.Startup(cmd.Context(), opts); err != nil {
			return err
		}
		if declined {
			fmt.Printf("%s import cancelled, local data unchanged\n", ui.RenderWarn("!"))
			return nil
		}
		fmt.Printf("%s snapshot imported\n", ui.RenderSuccess("✓"))
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print a shareable link carrying the local dataset",
	Long: `Print a link that embeds the full local dataset as a token.

Opening the link on another device (or passing it to serve --from-link)
imports the dataset there after confirmation. With --connect, the link
instead carries just the configured sheet bridge endpoint, so the other
device auto-configures the same bridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, st, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		base, _ := cmd.Flags().GetString("base")

		if connect, _ := cmd.Flags().GetBool("connect"); connect {
			endpoint, err := svc.BridgeURL(cmd.Context(), bridge.KindSheet)
			if err != nil {
				return err
			}
			if endpoint == "" {
				return fmt.Errorf("no sheet bridge configured")
			}
			link, err := snapshot.BuildConnectLink(base, endpoint)
			if err != nil {
				return err
			}
			fmt.Println(link)
			return nil
		}

		snap, err := st.Export(cmd.Context())
		if err != nil {
			return err
		}
		link, err := snapshot.BuildShareLink(base, snap)
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect <sheet|rest|static> <url>",
	Short: "Configure a cloud bridge endpoint",
	Long: `Persist a bridge endpoint for this device.

Configuring one bridge does not clear the others; sheet and rest bridges
are both pushed to when both have endpoints. Pulls use the first
configured bridge in sheet, rest, static order.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := bridge.Kind(args[0])
		switch kind {
		case bridge.KindSheet, bridge.KindRest, bridge.KindStatic:
		default:
			return fmt.Errorf("unknown bridge kind %q (want sheet, rest, or static)", args[0])
		}

		svc, _, _, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.SetBridgeURL(cmd.Context(), kind, args[1]); err != nil {
			return err
		}
		fmt.Printf("%s %s bridge configured\n", ui.RenderSuccess("✓"), kind)
		return nil
	},
}

// writeBackup saves an indented JSON export next to the database before a
// destructive operation.
func writeBackup(snap *model.Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func init() {
	exportCmd.Flags().Bool("json", false, "emit indented JSON instead of a token")
	importCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	linkCmd.Flags().String("base", "https://helpdesk.local/", "base URL the token is appended to")
	linkCmd.Flags().Bool("connect", false, "share the bridge endpoint instead of the dataset")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(connectCmd)
}

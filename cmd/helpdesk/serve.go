package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vcpc/helpdesk/internal/broadcast"
	"github.com/vcpc/helpdesk/internal/model"
	"github.com/vcpc/helpdesk/internal/snapshot"
	"github.com/vcpc/helpdesk/internal/syncd"
	"github.com/vcpc/helpdesk/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync service and broadcast server",
	Long: `Run the sync service for this device.

The service loads local state, pulls from the configured bridge when one
exists, seeds defaults on a fresh store, then keeps pulling on a fixed
interval. A local WebSocket server fans change notifications out to other
helpdesk processes on this device, and a file watcher picks up writes
those processes make to the shared database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, hub, st, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Share links pasted on the command line behave like opening
		// the link: tokens are consumed once at startup.
		opts := syncd.StartupOptions{Confirm: confirmPrompt}
		if link, _ := cmd.Flags().GetString("from-link"); link != "" {
			tokens, _, err := snapshot.ParseShareLink(link)
			if err != nil {
				return err
			}
			opts.SyncDataToken = tokens.SyncData
			opts.ConnectToken = tokens.Connect
		}

		if err := svc.Startup(ctx, opts); err != nil {
			return err
		}

		server := broadcast.NewServer(&broadcast.ServerConfig{
			Port:   viper.GetInt("broadcast_port"),
			Logger: newLogger("[broadcast] "),
		})
		if err := server.Start(); err != nil {
			return err
		}
		defer server.Stop()

		// Local changes fan out to peer processes.
		unsubscribe := hub.Subscribe(func(ev broadcast.Event) {
			server.Broadcast(ev)
		})
		defer unsubscribe()

		// Peer writes to the shared database surface as ALL events.
		watcher, err := broadcast.NewStoreWatcher(st.Path(), 0)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()

		go func() {
			for ts := range watcher.Events() {
				server.Broadcast(broadcast.Event{Type: model.All, Timestamp: ts})
			}
		}()

		fmt.Printf("%s helpdesk sync service running (broadcast %s)\n",
			ui.RenderAccent("●"), server.Addr())

		err = svc.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().String("from-link", "", "apply a share link (snapshot or bridge connect) at startup")
	rootCmd.AddCommand(serveCmd)
}

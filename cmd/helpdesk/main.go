// Command helpdesk runs the local-first synchronization service for the
// helpdesk record keeper: a SQLite record store, a change broadcaster for
// peer processes on the same device, and best-effort mirror sync against
// configurable cloud bridges.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vcpc/helpdesk/internal/broadcast"
	"github.com/vcpc/helpdesk/internal/store"
	"github.com/vcpc/helpdesk/internal/syncd"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Local-first helpdesk data store with cloud bridge sync",
	Long: `helpdesk manages the local helpdesk database and its synchronization.

The local SQLite database is the source of truth on this device. Changes
are broadcast to other local processes and mirrored, best-effort, to a
configured cloud bridge (spreadsheet endpoint, REST bridge, or static
JSON document).`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./helpdesk.yaml or ~/.helpdesk/helpdesk.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the store database (default: ~/.helpdesk/helpdesk.db)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file with rotation instead of stderr")

	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("helpdesk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".helpdesk"))
		}
	}

	viper.SetEnvPrefix("HELPDESK")
	viper.AutomaticEnv()

	viper.SetDefault("pull_interval", "30s")
	viper.SetDefault("broadcast_port", 7633)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}
}

// dbPath resolves the configured database path.
func dbPath() string {
	if p := viper.GetString("db"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".helpdesk", "helpdesk.db")
	}
	return filepath.Join(home, ".helpdesk", "helpdesk.db")
}

// newLogger builds a component logger, routed through a rotating file
// writer when log_file is configured.
func newLogger(prefix string) *log.Logger {
	var w io.Writer = os.Stderr
	if path := viper.GetString("log_file"); path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
	}
	return log.New(w, prefix, log.LstdFlags)
}

// openService opens the store and constructs the sync service. The caller
// must invoke the returned cleanup function.
func openService() (*syncd.Service, *broadcast.Hub, *store.Store, func(), error) {
	st, err := store.Open(dbPath())
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	hub := broadcast.NewHub()
	svc := syncd.New(st, hub, &syncd.Config{
		PullInterval: viper.GetDuration("pull_interval"),
		Logger:       newLogger("[syncd] "),
	})

	cleanup := func() {
		svc.Flush()
		_ = st.Close()
	}
	return svc, hub, st, cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

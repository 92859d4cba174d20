package main

import (
	"fmt"
	"os"

	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/maloquacious/sqltable/internal/config"
	"github.com/maloquacious/sqltable/internal/logger"
	"github.com/maloquacious/sqltable/internal/store"
	"github.com/maloquacious/sqltable/internal/store/sqlite"
)

var (
	version       = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	schemaVersion = "0.1"
	buildDate     = ""
)

// app carries state shared by every command: configuration and the single
// connection, opened lazily and closed when the process exits.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     logger.Logger
	conn    *store.Connection
}

func main() {
	a := &app{v: config.New(), log: logger.Default}
	rootCmd := newRootCmd(a)

	err := rootCmd.Execute()
	if cerr := a.close(); cerr != nil {
		a.log.Error("close: %v", cerr)
		if err == nil {
			err = cerr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "app",
		Short:        "User table administration over an embedded SQLite database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(a.v, cmd.Root().PersistentFlags())
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "optional YAML configuration file")
	pf.String("db", "sqltable.db", "path to the database file")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "app %s (schema %s)", version.String(), schemaVersion)
			if buildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " built %s", buildDate)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(newDBCmd(a), newUsersCmd(a), newShellCmd(a), versionCmd)
	return rootCmd
}

// flagKeys maps configuration keys to the global flags that override them.
var flagKeys = []struct{ key, flag string }{
	{"database.path", "db"},
	{"log.level", "log-level"},
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		if err := v.BindPFlag(fk.key, fs.Lookup(fk.flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", fk.flag, err)
		}
	}
	return nil
}

// loadConfig loads configuration once.
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return nil, err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.log = logger.New(os.Stderr, level)
	return cfg, nil
}

// open returns the shared connection, opening the configured file on first use.
func (a *app) open() (*store.Connection, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if a.conn == nil {
		d, err := sqlite.New(sqlite.Options{
			BusyTimeout: cfg.Database.BusyTimeout,
			JournalMode: cfg.Database.JournalMode,
			Synchronous: cfg.Database.Synchronous,
		})
		if err != nil {
			return nil, err
		}
		a.conn = store.NewConnection(d, store.WithLogger(a.log))
	}
	if err := a.conn.Open(cfg.Database.Path); err != nil {
		return nil, err
	}
	return a.conn, nil
}

func (a *app) close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/maloquacious/sqltable/internal/store"
	"github.com/maloquacious/sqltable/internal/store/sqlite"
	"github.com/maloquacious/sqltable/internal/users"
)

func newDBCmd(a *app) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create and initialize the datastore",
		RunE:  a.runDBCreate,
	}
	dbVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify schema integrity and version",
		RunE:  a.runDBVerify,
	}
	dbStatsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database size and row counts",
		RunE:  a.runDBStats,
	}

	dbCmd.AddCommand(dbCreateCmd, dbVerifyCmd, dbStatsCmd)
	return dbCmd
}

func (a *app) runDBCreate(cmd *cobra.Command, args []string) error {
	conn, err := a.open()
	if err != nil {
		return err
	}
	if err := sqlite.InitSchema(conn, schemaVersion); err != nil {
		return err
	}
	if err := users.New(conn).Init(); err != nil {
		return err
	}
	a.log.Info("db create: initialized %s (schema %s, app %s)", conn.Path(), schemaVersion, version.String())
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", conn.Path())
	return nil
}

func (a *app) runDBVerify(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	exists, err := store.CheckExists(cfg.Database.Path)
	if err != nil {
		return err
	}
	state := store.StateMissing
	current := ""
	if exists {
		conn, err := a.open()
		if err != nil {
			return err
		}
		if state, err = sqlite.CheckState(conn, schemaVersion); err != nil {
			return err
		}
		if state != store.StateUninitialized {
			if current, err = sqlite.GetSchemaVersion(conn); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "path:     %s\nstate:    %s\nschema:   %s\nexpected: %s\n",
		cfg.Database.Path, state, current, schemaVersion)
	if state != store.StateReady {
		return fmt.Errorf("datastore is not ready: %s", state)
	}
	return nil
}

func (a *app) runDBStats(cmd *cobra.Command, args []string) error {
	conn, err := a.open()
	if err != nil {
		return err
	}
	u := users.New(conn)
	n, err := u.Count()
	if err != nil {
		return err
	}
	size, err := store.FileSize(conn.Path())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "file:  %s\nsize:  %s\n%s: %s\n",
		conn.Path(), humanize.Bytes(uint64(size)), u.Table().Schema().Name(), humanize.Comma(n))
	return nil
}

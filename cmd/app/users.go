package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/maloquacious/sqltable/internal/users"
)

func newUsersCmd(a *app) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	var admin bool
	addCmd := &cobra.Command{
		Use:   "add <name> <password>",
		Short: "Add a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.openUsers()
			if err != nil {
				return err
			}
			id, err := u.Add(args[0], users.HashPassword(args[1]), admin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	addCmd.Flags().BoolVar(&admin, "admin", false, "grant admin rights")

	var getHidden, asJSON bool
	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.openUsers()
			if err != nil {
				return err
			}
			rec, err := u.Get(args[0], getHidden)
			if err != nil {
				return err
			}
			if asJSON {
				b, err := json.Marshal(rec)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", "uuid", rec.ID())
			for _, f := range rec.Fields() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", f.Column, f.Value)
			}
			return nil
		},
	}
	getCmd.Flags().BoolVar(&getHidden, "hidden", false, "include hidden columns")
	getCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	var listHidden bool
	var offset, limit uint64
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.openUsers()
			if err != nil {
				return err
			}
			rows, err := u.List(listHidden, offset, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rows.String())
			fmt.Fprintf(cmd.OutOrStdout(), "%s row(s)\n", humanize.Comma(int64(rows.Len())))
			return nil
		},
	}
	listCmd.Flags().BoolVar(&listHidden, "hidden", false, "include hidden columns")
	listCmd.Flags().Uint64Var(&offset, "offset", 0, "rows to skip")
	listCmd.Flags().Uint64Var(&limit, "limit", 0, "maximum rows (0 = all)")

	var setAdmin bool
	var setPassword string
	updateCmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change a user's admin flag or password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adminChanged := cmd.Flags().Changed("admin")
			passwordChanged := cmd.Flags().Changed("password")
			if !adminChanged && !passwordChanged {
				return errors.New("nothing to update: pass --admin or --password")
			}
			u, err := a.openUsers()
			if err != nil {
				return err
			}
			if adminChanged {
				if err := u.SetAdmin(args[0], setAdmin); err != nil {
					return err
				}
			}
			if passwordChanged {
				if err := u.SetPasswordHash(args[0], users.HashPassword(setPassword)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[0])
			return nil
		},
	}
	updateCmd.Flags().BoolVar(&setAdmin, "admin", false, "admin flag")
	updateCmd.Flags().StringVar(&setPassword, "password", "", "new password")

	var deleteAll bool
	deleteCmd := &cobra.Command{
		Use:   "delete [<name>]",
		Short: "Delete a user, or every user with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deleteAll == (len(args) == 1) {
				return errors.New("pass either a name or --all")
			}
			u, err := a.openUsers()
			if err != nil {
				return err
			}
			if deleteAll {
				if err := u.DeleteAll(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted all users")
				return nil
			}
			if err := u.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every user")

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Count users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.openUsers()
			if err != nil {
				return err
			}
			n, err := u.Count()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatInt(n, 10))
			return nil
		},
	}

	usersCmd.AddCommand(addCmd, getCmd, listCmd, updateCmd, deleteCmd, countCmd)
	return usersCmd
}

// openUsers opens the database and makes sure the users table exists.
func (a *app) openUsers() (*users.Users, error) {
	conn, err := a.open()
	if err != nil {
		return nil, err
	}
	u := users.New(conn)
	if err := u.Init(); err != nil {
		return nil, err
	}
	return u, nil
}

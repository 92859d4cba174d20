package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

const shellPrompt = "users> "

func newShellCmd(a *app) *cobra.Command {
	var histPath string
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive session over the users table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(histPath)
		},
	}
	shellCmd.Flags().StringVar(&histPath, "history", defaultHistoryPath(), "history file path")
	return shellCmd
}

func (a *app) runShell(histPath string) error {
	conn, err := a.open()
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     histPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := rl.Stdout()
	fmt.Fprintf(out, "connected to %s\n", conn.Path())
	fmt.Fprintln(out, "type help for help")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			// EOF
			fmt.Fprintln(out)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "\\q", "quit", "exit":
			return nil
		case "help", "\\help":
			printShellHelp(out)
			continue
		}

		fields, err := splitArgs(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if fields[0] == "users" {
			fields = fields[1:]
		}

		// a fresh command tree per line so flags never leak between lines
		cmd := newUsersCmd(a)
		cmd.SetArgs(fields)
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		if err := cmd.Execute(); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, `commands:
  add <name> <password> [--admin]
  get <name> [--hidden] [--json]
  list [--hidden] [--offset n] [--limit n]
  update <name> [--admin=true|false] [--password p]
  delete <name> | delete --all
  count
  quit | exit | \q

quote names containing spaces: get "another user"`)
}

// splitArgs splits a shell line on spaces, honoring double quotes.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inQuote, started := false, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".sqltable_history"
	}
	return filepath.Join(home, ".sqltable_history")
}

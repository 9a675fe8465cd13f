package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/esime/ielec/auth"
)

func newUsersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUsersCreateCmd(e), newUsersListCmd(e), newUsersDeleteCmd(e), newUsersPasswdCmd(e))
	return cmd
}

func newUsersCreateCmd(e *env) *cobra.Command {
	var name, password string
	cmd := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if password == "" {
				if password, err = promptPassword(); err != nil {
					return err
				}
			}
			if n := cfg.Auth.MinPasswordLength; len([]rune(password)) < n {
				return fmt.Errorf("password must have at least %d characters", n)
			}

			user, err := auth.NewStore(db).CreateUser(cmd.Context(), args[0], name, password)
			if errors.Is(err, auth.ErrUserExists) {
				return fmt.Errorf("user already exists: %s", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "✓ Created user %s (%s)\n", user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	return cmd
}

func newUsersListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			users, err := auth.NewStore(db).ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			printUsers(e.stdout, users)
			return nil
		},
	}
}

func printUsers(w io.Writer, users []*auth.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	fmt.Fprintf(w, "%-40s %-20s %-30s %s\n", "ID", "NAME", "EMAIL", "CREATED")
	fmt.Fprintln(w, strings.Repeat("-", 108))
	for _, u := range users {
		name := u.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		fmt.Fprintf(w, "%-40s %-20s %-30s %s\n", u.ID, name, u.Email, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "\nTotal: %d user(s)\n", len(users))
}

func newUsersDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an account with its history, clients and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := auth.NewStore(db).DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "✓ Deleted user %s\n", args[0])
			return nil
		},
	}
}

func newUsersPasswdCmd(e *env) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "passwd EMAIL",
		Short: "Set an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := e.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			store := auth.NewStore(db)
			user, err := store.GetUserByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("user not found: %s", args[0])
			}
			if password == "" {
				if password, err = promptPassword(); err != nil {
					return err
				}
			}
			if n := cfg.Auth.MinPasswordLength; len([]rune(password)) < n {
				return fmt.Errorf("password must have at least %d characters", n)
			}
			if err := store.SetPassword(cmd.Context(), user.ID, password); err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "✓ Password updated for %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "New password (prompted when omitted)")
	return cmd
}

// promptPassword reads a password twice from the terminal without echo.
func promptPassword() (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	first, err := line.PasswordPrompt("Password: ")
	if err != nil {
		return "", passwordPromptError(err)
	}
	second, err := line.PasswordPrompt("Repeat password: ")
	if err != nil {
		return "", passwordPromptError(err)
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func passwordPromptError(err error) error {
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return errors.New("cancelled")
	case errors.Is(err, liner.ErrNotTerminalOutput):
		return errors.New("no terminal for the password prompt; use --password")
	}
	return fmt.Errorf("reading password: %w", err)
}

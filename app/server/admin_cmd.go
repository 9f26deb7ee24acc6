package main

import (
	"admin-backend/app/server/password"
	"admin-backend/app/server/store"
	"admin-backend/app/server/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"io"
	"os"
)

func newAdminCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	cmd.AddCommand(newAdminCreateCmd(configFile))
	cmd.AddCommand(newAdminListCmd(configFile))

	return cmd
}

func newAdminCreateCmd(configFile *string) *cobra.Command {
	var (
		email string
		name  string
		plain string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Example: `  admin-server admin create --email root@example.com --name Root --password secret123
  admin-server admin create --email root@example.com  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain == "" {
				var err error
				if plain, err = promptPassword(cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			d, err := prepare(*configFile)
			if err != nil {
				return err
			}
			defer d.Close()

			return runAdminCreate(cmd.Context(), d.store, d.hasher, cmd.OutOrStdout(), name, email, plain)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "admin display name")
	cmd.Flags().StringVar(&plain, "password", "", "admin password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// promptPassword 从终端读取两次密码，不回显
func promptPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, use --password")
	}

	_, _ = fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func runAdminCreate(ctx context.Context, s store.AdminStore, h *password.Hasher, out io.Writer, name, email, plain string) error {
	if !utils.ValidEmail(email) {
		return fmt.Errorf("invalid email address: %q", email)
	}
	if err := password.CheckPolicy(plain); err != nil {
		return err
	}

	hash, err := h.Hash(plain)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin, err := s.Insert(ctx, store.CreateAdmin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return fmt.Errorf("email already registered: %s", email)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Created admin %q (id %d)\n", admin.Email, admin.ID)
	return nil
}

func newAdminListCmd(configFile *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := prepare(*configFile)
			if err != nil {
				return err
			}
			defer d.Close()

			return runAdminList(cmd.Context(), d.store, cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runAdminList(ctx context.Context, s store.AdminStore, out io.Writer, jsonOutput bool) error {
	admins, _, err := s.List(ctx, store.ListQuery{})
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}

	type adminRow struct {
		ID       uint   `json:"id"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Disabled bool   `json:"disabled"`
	}

	rows := make([]adminRow, 0, len(admins))
	for _, a := range admins {
		rows = append(rows, adminRow{ID: a.ID, Email: a.Email, Name: a.Name, Disabled: a.Disabled})
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "No admin accounts. Use 'admin-server admin create' to create one.")
		return nil
	}

	_, _ = fmt.Fprintf(out, "%-6s %-30s %-24s %-8s\n", "ID", "EMAIL", "NAME", "DISABLED")
	for _, r := range rows {
		_, _ = fmt.Fprintf(out, "%-6d %-30s %-24s %-8t\n", r.ID, r.Email, r.Name, r.Disabled)
	}
	return nil
}

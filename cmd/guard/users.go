package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
)

type userRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Admin  bool   `json:"isAdmin"`
	System bool   `json:"systemGenerated"`
	Guest  bool   `json:"guest"`
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage the user directory",
	}
	cmd.AddCommand(usersListCmd())
	cmd.AddCommand(usersCreateCmd())
	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users and whether the current settings treat them as guests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			be, err := openBackends(backend, logger)
			if err != nil {
				return err
			}
			settings, err := overrides.resolve()
			if err != nil {
				return err
			}
			users, err := be.Users.ListUsers(ctx)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outputFmt, userRows(users, settings))
		},
	}
}

func userRows(users []model.User, s model.Settings) []userRow {
	guests := guard.ResolveGuests(users, s.GuestDetection, s.GuestUsers)
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{
			ID:     u.ID,
			Name:   u.DisplayName(),
			Admin:  u.IsAdmin,
			System: u.SystemGenerated,
			Guest:  guests.Has(u.ID),
		})
	}
	return rows
}

func usersCreateCmd() *cobra.Command {
	var (
		u        model.User
		password string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user in the MySQL directory",
		Long: `Create a user in the MySQL directory. Admins with a password can log
in to the HTTP API when serve runs with --login.

Examples:
  guard users create --users-backend mysql --id owner --name Owner --admin --password s3cret`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			be, err := openBackends(backend, logger)
			if err != nil {
				return err
			}
			if be.MySQL == nil {
				return fmt.Errorf("users create requires --users-backend mysql")
			}
			created, err := be.MySQL.CreateUser(ctx, u, password)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outputFmt, userRows([]model.User{created}, model.Settings{GuestDetection: model.GuestNonAdmin}))
		},
	}
	f := cmd.Flags()
	f.StringVar(&u.ID, "id", "", "User ID (required)")
	f.StringVar(&u.Name, "name", "", "Display name")
	f.BoolVar(&u.IsAdmin, "admin", false, "Grant admin")
	f.StringVar(&password, "password", "", "Login password (optional)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

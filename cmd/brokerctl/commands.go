package main

import (
	"fmt"

	"github.com/localnerve/brokerdb/internal/auth"
	"github.com/localnerve/brokerdb/internal/database"
	"github.com/localnerve/brokerdb/internal/models"
	"github.com/localnerve/brokerdb/internal/policy"
	"github.com/localnerve/brokerdb/internal/services"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db, cfg.DBType); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and roles",
	}
	cmd.AddCommand(userAddCmd(), userRoleCmd(), userActiveCmd("activate", true), userActiveCmd("deactivate", false))
	return cmd
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			first, _ := cmd.Flags().GetString("first")
			last, _ := cmd.Flags().GetString("last")
			roleName, _ := cmd.Flags().GetString("role")

			role, err := policy.ParseRole(roleName)
			if err != nil {
				return err
			}

			_, db, err := connect()
			if err != nil {
				return err
			}
			defer database.Close(db)

			user, err := services.CreateUser(cmd.Context(), db, services.UserInput{
				Email:     email,
				FirstName: first,
				LastName:  last,
				Role:      role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %d <%s>\n", user.Role, user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("first", "", "first name")
	cmd.Flags().String("last", "", "last name")
	cmd.Flags().String("role", string(models.RoleViewer), "admin, agent or viewer")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func userRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Change the role of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			roleName, _ := cmd.Flags().GetString("role")

			role, err := policy.ParseRole(roleName)
			if err != nil {
				return err
			}

			_, db, err := connect()
			if err != nil {
				return err
			}
			defer database.Close(db)

			user, err := services.SetRole(cmd.Context(), db, email, role)
			if err != nil {
				return fmt.Errorf("%s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("role", "", "admin, agent or viewer")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func userActiveCmd(use string, active bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: use + " a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")

			_, db, err := connect()
			if err != nil {
				return err
			}
			defer database.Close(db)

			user, err := services.SetActive(cmd.Context(), db, email, active)
			if err != nil {
				return fmt.Errorf("%s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", user.Email, active)
			return nil
		},
	}
	cmd.Flags().String("email", "", "email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer database.Close(db)

			user, err := services.FindByEmail(cmd.Context(), db, email)
			if err != nil {
				return fmt.Errorf("%s: %w", email, err)
			}
			if !user.IsActive {
				return fmt.Errorf("%s is inactive", email)
			}

			if ttl == 0 {
				ttl = cfg.JWTTTL
			}
			token, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, ttl).Issue(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().Duration("ttl", 0, "token lifetime, defaults to JWT_TTL")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

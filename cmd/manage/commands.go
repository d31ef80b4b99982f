package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"assistant/models"
	"assistant/pkg/database"
	"assistant/pkg/repository"
)

type opener func() (*gorm.DB, error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "manage",
		Short:         "Administrative tasks for the assistant service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newCreateSuperuserCmd(open),
		newSetRoleCmd(open),
		newPromoteCmd(open),
	)
	return root
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateSuperuserCmd(open opener) *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff and superuser account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username = strings.TrimSpace(username)
			if password == "" {
				password = os.Getenv("MANAGE_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("--username and --password (or MANAGE_PASSWORD) are required")
			}

			db, err := open()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			u := &models.User{Username: username, IsStaff: true, IsSuperuser: true}
			if err := u.SetPassword(password); err != nil {
				return err
			}
			if err := repository.NewUserRepo(db).CreateWithProfile(cmd.Context(), u, role); err != nil {
				if errors.Is(err, repository.ErrUsernameTaken) {
					return fmt.Errorf("user %q already exists; use promote instead", username)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "superuser %q created (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password (falls back to MANAGE_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", "Admin", "profile role shown in chat listings")
	return cmd
}

func newSetRoleCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "setrole <username> <role>",
		Short: "Change the display role of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			users := repository.NewUserRepo(db)
			u, err := lookup(cmd, users, args[0])
			if err != nil {
				return err
			}
			if err := users.SetRole(cmd.Context(), u.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "role of %q set to %q\n", u.Username, args[1])
			return nil
		},
	}
}

func newPromoteCmd(open opener) *cobra.Command {
	var superuser, revoke bool
	cmd := &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant (or with --revoke remove) staff standing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			users := repository.NewUserRepo(db)
			u, err := lookup(cmd, users, args[0])
			if err != nil {
				return err
			}

			staff, super := true, superuser || u.IsSuperuser
			if revoke {
				staff, super = false, false
			}
			if err := users.SetFlags(cmd.Context(), u.ID, staff, super); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q: staff=%t superuser=%t\n", u.Username, staff, super)
			return nil
		},
	}
	cmd.Flags().BoolVar(&superuser, "superuser", false, "also grant superuser")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove staff and superuser standing")
	return cmd
}

func lookup(cmd *cobra.Command, users *repository.UserRepo, username string) (*models.User, error) {
	u, err := users.GetByUsername(cmd.Context(), username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("no user named %q", username)
	}
	return u, err
}

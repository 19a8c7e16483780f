package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/spf13/cobra"
)

func newUsersCommand(a *app) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage user accounts",
	}

	users.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.listUsers(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "lock <email>",
			Short: "Prevent a user from signing in",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.updateUser(cmd.OutOrStdout(), args[0], "is_locked", true)
			},
		},
		&cobra.Command{
			Use:   "unlock <email>",
			Short: "Allow a locked user to sign in again",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.updateUser(cmd.OutOrStdout(), args[0], "is_locked", false)
			},
		},
		&cobra.Command{
			Use:   "set-role <email> <role>",
			Short: "Change a user's role (Administrator, ProjectResponsible, ProjectTeamMember, Observer)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				role := models.UserRole(args[1])
				if !role.Valid() {
					return fmt.Errorf("unknown role %q", args[1])
				}
				return a.updateUser(cmd.OutOrStdout(), args[0], "role", role)
			},
		},
	)
	return users
}

func (a *app) listUsers(out io.Writer) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}

	var users []models.User
	if err := db.Order("email ASC").Find(&users).Error; err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	if a.jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tLOCKED\tLAST LOGIN")
	for _, u := range users {
		lastLogin := "never"
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format(time.RFC3339)
		}
		locked := "-"
		if u.IsLocked {
			locked = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Email, u.FullName, u.Role, locked, lastLogin)
	}
	return w.Flush()
}

func (a *app) updateUser(out io.Writer, email, column string, value interface{}) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}

	email = models.NormalizeEmail(email)
	result := db.Model(&models.User{}).Where("email = ?", email).Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("updating user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no user with email %s", email)
	}

	logger.Info("user_updated_from_cli", map[string]interface{}{
		"email":  email,
		"column": column,
		"value":  value,
	})
	fmt.Fprintf(out, "Updated %s: %s = %v\n", email, column, value)
	return nil
}

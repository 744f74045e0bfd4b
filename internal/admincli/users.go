package admincli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yatube/community/internal/models"
	"github.com/yatube/community/internal/services"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(a.userCreateCmd())
	return cmd
}

func (a *app) userCreateCmd() *cobra.Command {
	var (
		input   services.RegisterInput
		asAdmin bool
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.db(cmd)
			if err != nil {
				return err
			}

			input.Username = args[0]
			input.Role = models.UserRoleUser
			if asAdmin {
				input.Role = models.UserRoleAdmin
			}

			user, err := services.NewAccountService(db).Register(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("creating user: %w", err)
			}

			if a.flagJSON {
				return a.printJSON(cmd, user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.Role, user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Password, "password", "", "Password, at least 8 characters (required)")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "Last name")
	cmd.Flags().BoolVar(&asAdmin, "admin", false, "Grant the admin role")
	return cmd
}

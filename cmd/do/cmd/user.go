package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/sneakerbase/internal/db"
	"github.com/templui/sneakerbase/internal/events"
	"github.com/templui/sneakerbase/internal/repository"
	"github.com/templui/sneakerbase/internal/service"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect and repair user records",
	}

	cmd.AddCommand(userSyncCmd(), userShowCmd())
	return cmd
}

// userSyncCmd replays a profile update the identity backend failed to deliver.
func userSyncCmd() *cobra.Command {
	var subject, email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or update a user's email and display name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				err := db.RunMigrations(database.DB, driver)
				if err != nil {
					return err
				}

				var first, last *string
				if cmd.Flags().Changed("first") {
					first = &firstName
				}
				if cmd.Flags().Changed("last") {
					last = &lastName
				}

				users := service.NewUserService(repository.NewUserRepository(database), events.Discard)
				user, err := users.UpdateProfile(subject, email, first, last)
				if err != nil {
					return err
				}

				return printJSON(cmd, user)
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "identity provider subject")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&firstName, "first", "", "first name")
	cmd.Flags().StringVar(&lastName, "last", "", "last name")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func userShowCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the user record for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				users := service.NewUserService(repository.NewUserRepository(database), events.Discard)
				user, err := users.CurrentUser(subject)
				if err != nil {
					return err
				}
				if user == nil {
					return fmt.Errorf("no user with subject %q", subject)
				}
				return printJSON(cmd, user)
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "identity provider subject")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

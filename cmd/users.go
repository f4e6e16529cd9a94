package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlaslearn/atlas/backend/models"
	"github.com/atlaslearn/atlas/backend/repository"
	"github.com/atlaslearn/atlas/backend/services"
)

const minPasswordLength = 6

type createUserOptions struct {
	email    string
	name     string
	password string
	standard string
}

func (o createUserOptions) validate() error {
	if !strings.Contains(o.email, "@") {
		return errors.New("a valid --email is required")
	}
	if strings.TrimSpace(o.name) == "" {
		return errors.New("--name is required")
	}
	if len(o.password) < minPasswordLength {
		return fmt.Errorf("--password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func newCreateUserCommand(ctx *commandContext) *cobra.Command {
	var opts createUserOptions

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a student account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			hashed, err := services.HashPassword(opts.password)
			if err != nil {
				return err
			}

			user := &models.User{
				Email:    strings.ToLower(strings.TrimSpace(opts.email)),
				Name:     strings.TrimSpace(opts.name),
				Password: hashed,
				Standard: strings.TrimSpace(opts.standard),
			}
			return ctx.withStore(cmd.Context(), func(store repository.Store) error {
				if err := store.CreateUser(cmd.Context(), user); err != nil {
					if errors.Is(err, repository.ErrDuplicateEmail) {
						return fmt.Errorf("user %s already exists", user.Email)
					}
					return fmt.Errorf("failed to create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.name, "name", "", "Display name")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password")
	cmd.Flags().StringVar(&opts.standard, "standard", "", "Class or standard, e.g. 10th")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

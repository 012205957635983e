package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/authn"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/db"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/validation"
	gormstore "github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user with the given role.

This is the only way to create an administrator; self-service registration
always creates users with the 'user' role.

Example:
  pwstore user create --name admin --email admin@example.com --password s3cret-pass --role admin`,
	Run: func(cmd *cobra.Command, args []string) {
		in := userInput{}
		in.Name, _ = cmd.Flags().GetString("name")
		in.Email, _ = cmd.Flags().GetString("email")
		in.Password, _ = cmd.Flags().GetString("password")
		in.Role, _ = cmd.Flags().GetString("role")

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		user, err := createUser(cmd.Context(), database, in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created user '%s' with role '%s'\n", user.Email, user.Role)
		fmt.Println(user.ID)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("name", "", "Display name")
	userCreateCmd.Flags().String("email", "", "Login email")
	userCreateCmd.Flags().String("password", "", "Login password (at least 8 characters)")
	userCreateCmd.Flags().String("role", model.RoleUser.String(), "Role (user or admin)")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}

type userInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

func createUser(ctx context.Context, database *gorm.DB, in userInput) (*model.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	role, err := model.RoleString(in.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid role %q", in.Role)
	}

	return authn.NewAuthenticator(gormstore.NewUsersStore(database)).Register(ctx, authn.Registration{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
	})
}

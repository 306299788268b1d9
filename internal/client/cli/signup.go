package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/scholarkeeper/internal/validation"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

func (c *Cli) runSignup(ctx context.Context, args []string) error {
	c.io.Println("=== Sign up ===")
	c.io.Println()

	userID, err := c.userID(args)
	if err != nil {
		return err
	}
	if err := validation.ValidateUsername(userID); err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	password, err := c.getPassword("Password: ")
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	// Подтверждение нужно только при ручном вводе
	if c.interactive() {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}
	}

	resp, err := c.backend.Signup(ctx, api.CredentialsRequest{UserID: userID, Password: password})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Account created!")
	c.io.Printf("User ID: %s\n", resp.UserID)
	c.io.Println()
	c.io.Println("Please run 'scholarkeeper login' to start using the service.")

	return nil
}

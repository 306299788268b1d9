package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/scholarkeeper/internal/client/storage"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	userID, err := c.userID(args)
	if err != nil {
		return err
	}

	password, err := c.getPassword("Password: ")
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	resp, err := c.backend.Login(ctx, api.CredentialsRequest{UserID: userID, Password: password})
	if err != nil {
		return err
	}

	// Cookie jar уже содержит session и ротированный csrf_token
	sessionToken, csrfToken := c.backend.Session()
	if sessionToken == "" {
		return fmt.Errorf("server did not set a session cookie")
	}
	if csrfToken == "" {
		csrfToken = resp.CSRFToken
	}

	session := &storage.SessionData{
		ExpiresAt:    c.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		ServerURL:    c.backend.BaseURL(),
		UserID:       resp.UserID,
		SessionToken: sessionToken,
		CSRFToken:    csrfToken,
	}
	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.session = session

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("User ID: %s\n", resp.UserID)
	c.io.Printf("Session expires in: %s\n", time.Duration(resp.ExpiresIn)*time.Second)

	return nil
}

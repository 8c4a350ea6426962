package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmribeiro/recibox/internal/services"
	"github.com/dmribeiro/recibox/internal/shared"
)

// Login establishes a session with the primary store and caches the
// material needed for offline re-authentication.
func (a *App) Login(ctx context.Context) error {
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.auth.Login(ctx, password); err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			printlnFn("Wrong password.")
			return err
		}
		a.logger.Error(ctx, "login failed", "error", err)
		return err
	}
	printlnFn("Logged in.")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/invsync/internal/shared"
)

// AuthStatus checks the configured token against the instance.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.config.Instance.Token == "" {
		return fmt.Errorf("%w: set instance.token or INVSYNC_INSTANCE_TOKEN", shared.ErrMissingCredentials)
	}

	client := r.client()
	r.logger.Debug("verifying token", "instance", client.BaseURL())

	if err := client.VerifyToken(ctx); err != nil {
		if errors.Is(err, shared.ErrRemoteAuth) {
			r.writePlain("✗ Token rejected by %s\n", client.BaseURL())
		}
		return err
	}

	return r.writePlain("✓ Authenticated with %s\n", client.BaseURL())
}

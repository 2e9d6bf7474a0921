package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aouyang1/magicframe/api/client"
	"github.com/aouyang1/magicframe/session"
)

type logoutService interface {
	Logout(ctx context.Context, token string) (string, error)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		pc := client.NewPhotoClient(cfg.APIURL, cfg.HTTPTimeout)
		return logout(cmd.Context(), cmd.OutOrStdout(), cfg.SessionFile, pc)
	},
}

// logout ends the session the same way the menu does: a refusal from the service keeps the
// session, an unreachable service still logs out locally
func logout(ctx context.Context, w io.Writer, sessionPath string, svc logoutService) error {
	sess, err := session.Load(sessionPath)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Fprintln(w, "You are not currently logged in")
		return nil
	}

	message, err := svc.Logout(ctx, sess.Token)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("logout refused: %s", apiErr.Message)
	}

	if clearErr := session.Clear(sessionPath); clearErr != nil {
		return clearErr
	}
	if err != nil {
		slog.Warn("logout request failed", "error", err)
		fmt.Fprintln(w, "Logged out locally, but server connection failed")
		return nil
	}
	fmt.Fprintln(w, message)
	return nil
}

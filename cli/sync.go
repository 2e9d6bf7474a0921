package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aouyang1/magicframe/api/client"
	"github.com/aouyang1/magicframe/session"
	"github.com/aouyang1/magicframe/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Check for new images once with the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, lib, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		pc := client.NewPhotoClient(cfg.APIURL, cfg.HTTPTimeout)
		poller := newSyncer(cmd.Context(), cfg, pc, db, lib)
		return syncOnce(cmd.Context(), cmd.OutOrStdout(), cfg.SessionFile, poller)
	},
}

func syncOnce(ctx context.Context, w io.Writer, sessionPath string, poller ui.Poller) error {
	sess, err := session.Load(sessionPath)
	if err != nil {
		return err
	}
	if sess == nil {
		return session.ErrNoSession
	}

	added, err := poller.CheckForNew(ctx, sess.Token)
	if len(added) > 0 || err == nil {
		fmt.Fprintf(w, "Downloaded %d new images\n", len(added))
	}
	return err
}

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aouyang1/magicframe/session"
	"github.com/aouyang1/magicframe/store"
	"github.com/aouyang1/magicframe/ui/styles"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session, image counts and slideshow settings",
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
		reconcileRegistry(lib, db)

		sess, err := session.Load(cfg.SessionFile)
		if err != nil {
			slog.Warn("unable to read session", "error", err)
		}
		images, err := lib.List()
		if err != nil {
			return err
		}
		registered, err := db.GetPhotoCount()
		if err != nil {
			return err
		}
		settings, err := db.GetAppSettings()
		if err != nil {
			return err
		}

		printStatus(cmd.OutOrStdout(), sess, settings, len(images), registered)
		return nil
	},
}

func printStatus(w io.Writer, sess *session.Session, settings *store.AppSettings, images, registered int) {
	account := "not logged in"
	if sess != nil {
		account = fmt.Sprintf("logged in as %s (user %d)", sess.Username, sess.UserID)
	}
	shuffle := "off"
	if settings.ShuffleEnabled {
		shuffle = "on"
	}

	lines := []string{
		"Account:     " + account,
		fmt.Sprintf("Images:      %d on disk, %d registered", images, registered),
		fmt.Sprintf("Slideshow:   %s per image, shuffle %s", settings.SlideshowDelay(), shuffle),
		fmt.Sprintf("Polling:     every %s", settings.PollInterval()),
	}
	fmt.Fprintln(w, styles.TitleStyle.Render("Magic Photo Frame"))
	fmt.Fprintln(w, styles.TextStyle.Render(strings.Join(lines, "\n")))
}

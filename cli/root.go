// Package cli is the magicframe command line: the kiosk itself plus a few maintenance commands
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/aouyang1/magicframe/api"
	"github.com/aouyang1/magicframe/api/client"
	"github.com/aouyang1/magicframe/config"
	"github.com/aouyang1/magicframe/library"
	"github.com/aouyang1/magicframe/session"
	"github.com/aouyang1/magicframe/slideshow"
	"github.com/aouyang1/magicframe/store"
	"github.com/aouyang1/magicframe/ui"
	"github.com/aouyang1/magicframe/wifi"
	"github.com/aouyang1/magicframe/wlrrandr"
)

var (
	rootPath  string
	apiURL    string
	display   string
	listen    string
	autostart bool
)

var rootCmd = &cobra.Command{
	Use:   "magicframe",
	Short: "Digital photo frame kiosk",
	Long: `Runs the photo frame: a full screen menu to log in to the photo sharing service,
play the downloaded images as a slideshow and set up Wi-Fi.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = listen
		}
		return runKiosk(cmd.Context(), cfg, autostart)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "directory for the database and log file (MF_ROOT_PATH)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "photo service endpoint (MF_API_URL)")
	rootCmd.PersistentFlags().StringVar(&display, "display", "", "slideshow backend, terminal or imv (MF_DISPLAY)")
	rootCmd.Flags().StringVar(&listen, "listen", "", "control API address, empty disables it (MF_LISTEN_ADDR)")
	rootCmd.Flags().BoolVar(&autostart, "autostart", false, "enter online mode on start")

	rootCmd.AddCommand(wifiCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.SetRoot(rootPath)
	}
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("display") {
		cfg.Display = display
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the registry and the image directory
func openStore(cfg *config.Config) (*store.Database, *library.Library, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, nil, err
	}
	db, err := store.NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	lib, err := library.New(cfg.ImageDir)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, lib, nil
}

// newSyncer wires the service poller and, when a bucket is configured, the S3 mirror
func newSyncer(ctx context.Context, cfg *config.Config, pc *client.PhotoClient, db *store.Database, lib *library.Library) *api.Syncer {
	remote := api.NewRemoteManager(pc, lib, db)
	if !cfg.BucketEnabled() {
		return api.NewSyncer(remote, nil)
	}

	bucket, err := api.NewBucketManager(ctx, cfg.AWSProfile, cfg.S3Bucket, lib, db)
	if err != nil {
		slog.Warn("bucket mirror disabled", "bucket", cfg.S3Bucket, "error", err)
		return api.NewSyncer(remote, nil)
	}
	return api.NewSyncer(remote, bucket)
}

// reconcileRegistry brings the registry in line with images added or removed by hand
func reconcileRegistry(lib *library.Library, db *store.Database) {
	registered, removed, err := api.NewLocalManager(lib, db).Reconcile()
	if err != nil {
		slog.Warn("unable to reconcile photo registry", "error", err)
		return
	}
	if registered > 0 || removed > 0 {
		slog.Info("reconciled photo registry", "registered", registered, "removed", removed)
	}
}

func newDisplay(ctx context.Context, cfg *config.Config, screen *wlrrandr.Screen) (slideshow.Display, error) {
	if cfg.Display == "imv" {
		return slideshow.NewImvDisplay(ctx, filepath.Join(cfg.RootPath, "frames"), screen)
	}
	return slideshow.NewTerminalDisplay(), nil
}

func runKiosk(ctx context.Context, cfg *config.Config, autostart bool) error {
	logFile, err := cfg.SetupLogging()
	if err != nil {
		return err
	}
	defer logFile.Close()

	db, lib, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	reconcileRegistry(lib, db)

	settings, err := db.GetAppSettings()
	if err != nil {
		slog.Warn("unable to read settings, using defaults", "error", err)
	}

	sess, err := session.Load(cfg.SessionFile)
	if err != nil {
		slog.Warn("unable to read session, starting logged out", "error", err)
	}

	pc := client.NewPhotoClient(cfg.APIURL, cfg.HTTPTimeout)
	screen := wlrrandr.NewScreen(cfg.DisplayOutput)
	frameDisplay, err := newDisplay(ctx, cfg, screen)
	if err != nil {
		return err
	}
	defer frameDisplay.Close()

	app := ui.New(ctx, ui.Options{
		Auth:        pc,
		Poller:      newSyncer(ctx, cfg, pc, db, lib),
		Library:     lib,
		Settings:    db,
		Networks:    wifi.NewManager(nil, cfg.WifiInterface, cfg.WifiCountry, cfg.WpaConfPath),
		Display:     frameDisplay,
		SessionPath: cfg.SessionFile,
		Session:     sess,
		AppSettings: settings,
		Autostart:   autostart,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	bridge := ui.NewBridge(app.Status())
	bridge.Attach(p)

	if cfg.ListenAddr != "" {
		// only the imv kiosk runs under a compositor wlr-randr can talk to
		var power api.DisplayPower
		if cfg.Display == "imv" {
			power = screen
		}
		gin.SetMode(gin.ReleaseMode)
		ws := api.NewWebServer(db, lib, bridge, power)
		go func() {
			if err := ws.Start(cfg.ListenAddr); err != nil {
				slog.Error("control API stopped", "error", err)
			}
		}()
	}

	if cfg.ScheduleEnabled() {
		schedule, err := api.NewScheduleManager(screen, cfg.ScreenOn, cfg.ScreenOff)
		if err != nil {
			slog.Warn("screen schedule disabled", "error", err)
		} else {
			go schedule.Run(ctx)
		}
	}

	slog.Info("starting frame", "display", cfg.Display, "logged_in", sess != nil, "autostart", autostart)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("frame program failed: %w", err)
	}
	slog.Info("frame stopped")
	return nil
}

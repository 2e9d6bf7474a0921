package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aouyang1/magicframe/config"
	"github.com/aouyang1/magicframe/ui"
	"github.com/aouyang1/magicframe/wifi"
)

const wifiTimeout = 30 * time.Second

var wifiPassword string

var wifiCmd = &cobra.Command{
	Use:   "wifi",
	Short: "Scan for and join Wi-Fi networks",
}

var wifiScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the networks in range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return scanNetworks(cmd.Context(), cmd.OutOrStdout(), newWifiManager(cfg))
	},
}

var wifiConnectCmd = &cobra.Command{
	Use:   "connect SSID",
	Short: "Write the network to wpa_supplicant and reconfigure the interface",
	Long: `Writes a wpa_supplicant configuration for SSID and asks wpa_cli to reload it.
Without --password the network is joined as an open network.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return connectNetwork(cmd.Context(), cmd.OutOrStdout(), newWifiManager(cfg), args[0], wifiPassword)
	},
}

func init() {
	wifiConnectCmd.Flags().StringVarP(&wifiPassword, "password", "p", "", "WPA passphrase, 8 to 63 characters")
	wifiCmd.AddCommand(wifiScanCmd)
	wifiCmd.AddCommand(wifiConnectCmd)
}

func newWifiManager(cfg *config.Config) *wifi.Manager {
	return wifi.NewManager(nil, cfg.WifiInterface, cfg.WifiCountry, cfg.WpaConfPath)
}

func scanNetworks(ctx context.Context, w io.Writer, networks ui.Networks) error {
	ctx, cancel := context.WithTimeout(ctx, wifiTimeout)
	defer cancel()

	ssids, err := networks.Scan(ctx)
	if err != nil {
		return err
	}
	if len(ssids) == 0 {
		fmt.Fprintln(w, "No networks found")
		return nil
	}
	for _, ssid := range ssids {
		fmt.Fprintln(w, ssid)
	}
	return nil
}

func connectNetwork(ctx context.Context, w io.Writer, networks ui.Networks, ssid, password string) error {
	ctx, cancel := context.WithTimeout(ctx, wifiTimeout)
	defer cancel()

	if err := networks.Connect(ctx, ssid, password); err != nil {
		return err
	}
	fmt.Fprintf(w, "Connected to %s\n", ssid)
	return nil
}

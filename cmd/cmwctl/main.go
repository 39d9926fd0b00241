// cmwctl queries H3C and HPE Comware switches over SSH or Telnet.
//
// Usage:
//
//	cmwctl --device core-sw1 facts          Device identity
//	cmwctl --host 192.0.2.10 interfaces     Interface state and counters
//	cmwctl --device core-sw1 config startup Saved configuration
//	cmwctl --device core-sw1 ping 10.0.0.1  Ping from the switch
//	cmwctl --device core-sw1 cli "display clock"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nanoncore/cmw-southbound/internal/config"
	"github.com/nanoncore/cmw-southbound/internal/logging"
)

var (
	configPath   string
	deviceName   string
	host         string
	transport    string
	port         int
	username     string
	password     string
	outputFormat string
	logLevel     string

	appConfig *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "cmwctl",
	Short:             "Query Comware switches",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `cmwctl opens a CLI session to an H3C or HPE Comware switch, runs one
query and prints the normalized result as JSON or YAML.

Devices come from the config file (--config, CMW_* environment variables)
or are given ad hoc with --host.

  cmwctl --config cmwctl.yaml --device core-sw1 arp`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logging.Init(cfg.Log); err != nil {
			return fmt.Errorf("failed to init logging: %w", err)
		}
		if logLevel != "" {
			if err := logging.SetLogLevel(logLevel); err != nil {
				return err
			}
		}
		if outputFormat != "json" && outputFormat != "yaml" {
			return fmt.Errorf("unsupported output format %q", outputFormat)
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (yaml, toml or json)")
	flags.StringVarP(&deviceName, "device", "d", "", "device name from the config file")
	flags.StringVarP(&host, "host", "H", "", "device address, instead of --device")
	flags.StringVar(&transport, "transport", "", "ssh or telnet")
	flags.IntVar(&port, "port", 0, "management port")
	flags.StringVarP(&username, "username", "u", "", "login username")
	flags.StringVarP(&password, "password", "p", "", "login password, prompted when empty on a terminal")
	flags.StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newFactsCmd(),
		newConfigCmd(),
		newInterfacesCmd(),
		newIPCmd(),
		newArpCmd(),
		newMacCmd(),
		newLLDPCmd(),
		newCountersCmd(),
		newPingCmd(),
		newCLICmd(),
		newAliveCmd(),
	)
}

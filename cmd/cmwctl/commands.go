package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	southbound "github.com/nanoncore/cmw-southbound"
	"github.com/nanoncore/cmw-southbound/types"
)

type queryFunc func(ctx context.Context, drv southbound.Driver) (interface{}, error)

// simpleCmd builds a command without arguments around one driver call
func simpleCmd(use, short string, fn queryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd.Context(), cmd.OutOrStdout(), fn)
		},
	}
}

func newFactsCmd() *cobra.Command {
	return simpleCmd("facts", "Show vendor, model, serial, version and uptime",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return drv.GetFacts(ctx)
		})
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "config [running|startup|candidate]",
		Short:     "Print a device configuration",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(types.ConfigRunning), string(types.ConfigStartup), string(types.ConfigCandidate)},
		RunE: func(cmd *cobra.Command, args []string) error {
			source := types.ConfigRunning
			if len(args) == 1 {
				source = types.ConfigSource(args[0])
			}
			return query(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
				text, err := drv.GetConfig(ctx, source)
				if err != nil {
					return nil, err
				}
				return map[string]string{string(source): text}, nil
			})
		},
	}
}

func newInterfacesCmd() *cobra.Command {
	return simpleCmd("interfaces", "Show interface state, speed and counters",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return drv.GetInterfaces(ctx)
		})
}

func newIPCmd() *cobra.Command {
	return simpleCmd("ip", "Show IPv4 and IPv6 interface addresses",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return drv.GetInterfacesIP(ctx)
		})
}

func newArpCmd() *cobra.Command {
	return simpleCmd("arp", "Show the ARP table",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return drv.GetArpTable(ctx)
		})
}

func newMacCmd() *cobra.Command {
	return simpleCmd("mac", "Show the MAC address table",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return drv.GetMACAddressTable(ctx)
		})
}

func newLLDPCmd() *cobra.Command {
	return simpleCmd("lldp", "Show LLDP neighbors",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return drv.GetLLDPNeighbors(ctx)
		})
}

func newCountersCmd() *cobra.Command {
	return simpleCmd("counters", "Show interface counters, from SNMP when configured",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return drv.GetInterfacesCounters(ctx)
		})
}

func newPingCmd() *cobra.Command {
	var opts types.PingOptions
	cmd := &cobra.Command{
		Use:   "ping DEST",
		Short: "Ping from the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
				return drv.Ping(ctx, args[0], opts)
			})
		},
	}
	cmd.Flags().IntVar(&opts.Count, "count", 0, "probes to send (default 5)")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "payload bytes (default 100)")
	cmd.Flags().IntVar(&opts.Timeout, "timeout", 0, "seconds per probe (default 2)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "source address")
	cmd.Flags().IntVar(&opts.TTL, "ttl", 0, "IP TTL")
	cmd.Flags().StringVar(&opts.VRF, "vrf", "", "VPN instance")
	return cmd
}

func newCLICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cli CMD...",
		Short: "Run raw commands; each argument is one command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd.Context(), cmd.OutOrStdout(), func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
				out, err := drv.CLI(ctx, args)
				if err != nil && len(out) == 0 {
					return nil, err
				}
				if err != nil {
					// rejected commands are printed with the rest
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
				return out, nil
			})
		},
	}
}

func newAliveCmd() *cobra.Command {
	return simpleCmd("alive", "Check that the session answers",
		func(ctx context.Context, drv southbound.Driver) (interface{}, error) {
			return map[string]bool{"is_alive": drv.IsActive(ctx)}, nil
		})
}

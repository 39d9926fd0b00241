package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	southbound "github.com/nanoncore/cmw-southbound"
	"github.com/nanoncore/cmw-southbound/internal/config"
	"github.com/nanoncore/cmw-southbound/types"
)

// target resolves the device from --device or --host and applies the
// connection flags on top
func target(cfg *config.Config) (*types.DeviceConfig, string, error) {
	var dc *types.DeviceConfig
	var deviceType string
	switch {
	case deviceName != "" && host != "":
		return nil, "", fmt.Errorf("--device and --host are mutually exclusive")
	case deviceName != "":
		var err error
		if dc, deviceType, err = cfg.Device(deviceName); err != nil {
			return nil, "", err
		}
	case host != "":
		dc, deviceType = cfg.Host(host)
	default:
		return nil, "", fmt.Errorf("a device is required: use --device <name> or --host <address>")
	}

	if transport != "" {
		dc.Transport = types.Transport(transport)
	}
	if port != 0 {
		dc.Port = port
	}
	if username != "" {
		dc.Username = username
	}
	if password != "" {
		dc.Password = password
	}
	return dc, deviceType, nil
}

// promptPassword asks for the login password when none is configured and
// stdin is a terminal
func promptPassword(dc *types.DeviceConfig) error {
	fd := int(os.Stdin.Fd())
	if dc.Password != "" || !term.IsTerminal(fd) {
		return nil
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", dc.Username, dc.Address)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	dc.Password = string(pw)
	return nil
}

// query opens the device, runs fn and prints its result
func query(ctx context.Context, w io.Writer, fn func(ctx context.Context, drv southbound.Driver) (interface{}, error)) error {
	dc, deviceType, err := target(appConfig)
	if err != nil {
		return err
	}
	if err := promptPassword(dc); err != nil {
		return err
	}

	drv, err := southbound.DefaultRegistry().New(deviceType, dc)
	if err != nil {
		return err
	}
	defer drv.Close()

	if err := drv.Open(ctx); err != nil {
		return err
	}
	result, err := fn(ctx, drv)
	if err != nil {
		return err
	}
	return render(w, result, outputFormat)
}

func render(w io.Writer, v interface{}, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

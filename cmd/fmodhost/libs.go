package main

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/lixenwraith/fmodapi/audio"
	"github.com/lixenwraith/fmodapi/fmod"
	"github.com/lixenwraith/fmodapi/nativelib"
	"github.com/spf13/cobra"
)

// newLibsCommand creates the libs command
func newLibsCommand(rootOpts *RootOptions) *cobra.Command {
	var symbols, devices bool

	cmd := &cobra.Command{
		Use:   "libs",
		Short: "Resolve the native libraries and report where they were found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if devices {
				listDevices(cmd.OutOrStdout())
			}
			return runLibs(cmd.OutOrStdout(), rootOpts, cfg, symbols)
		},
	}

	cmd.Flags().BoolVar(&symbols, "symbols", false, "check every required symbol")
	cmd.Flags().BoolVar(&devices, "devices", false, "list host playback devices")
	return cmd
}

func runLibs(w io.Writer, rootOpts *RootOptions, cfg audio.Config, symbols bool) error {
	backend := fmod.NewBackend(nil)
	loader := backend.Loader(cfg)
	if rootOpts.opener != nil {
		loader.Open = rootOpts.opener
	}

	set, err := loader.Resolve(fmod.HostDescriptors())
	if err != nil {
		var lerr *nativelib.LoadError
		if errors.As(err, &lerr) {
			fmt.Fprintf(w, "Libraries not found (%d attempts)\n", len(lerr.Attempts))
			for _, a := range lerr.Attempts {
				fmt.Fprintf(w, "  %s\n", a.Error())
			}
		}
		return err
	}
	defer set.Close()

	fmt.Fprintf(w, "Tier: %s\n", set.Tier())
	for _, p := range set.Paths() {
		fmt.Fprintf(w, "  %s\n", p)
	}

	if !symbols {
		return nil
	}

	var missing int
	byModule := fmod.SymbolNames()
	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	slices.Sort(modules)
	for _, module := range modules {
		lib, ok := set.Lookup(module)
		if !ok {
			return fmt.Errorf("module %s not loaded", module)
		}
		for _, name := range byModule[module] {
			if _, err := lib.Symbol(name); err != nil {
				fmt.Fprintf(w, "  missing %s\n", name)
				missing++
			}
		}
	}
	if missing > 0 {
		return fmt.Errorf("%d symbols missing", missing)
	}
	fmt.Fprintln(w, "All symbols present")
	return nil
}

// listDevices prints the playback devices the auto role probes
func listDevices(w io.Writer) {
	names, err := audio.PlaybackDevices()
	if err != nil {
		fmt.Fprintf(w, "Devices: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Devices: %d\n", len(names))
	for _, n := range names {
		fmt.Fprintf(w, "  %s\n", n)
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/AdminOfLife/pcjs/preferences"
)

// rootFlags collects the persistent flags every subcommand resolves
// against a loaded or default preferences.Preferences.
type rootFlags struct {
	config      string
	model       string
	cps         int
	noPrefetch  bool
	a20         bool
	randomState bool
	savePrefs   string
}

func newRootCmd() *cobra.Command {
	var rf rootFlags

	root := &cobra.Command{
		Use:   "pcjs",
		Short: "An 8086/8088/80186/80188/80286 instruction-execution core host",
		Long: `pcjs hosts the cpu package's instruction-execution core: a segmented
memory bus, prefetch queue, lazy flags evaluator, segment-descriptor unit
and hardware-interrupt dispatch, without any peripheral, video or audio
emulation attached.`,
		SilenceUsage: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&rf.config, "config", "", "preferences YAML file to load before applying flags")
	root.PersistentFlags().StringVar(&rf.model, "model", "", "CPU model: 8088, 80186 or 80286 (default from config, else 8088)")
	root.PersistentFlags().IntVar(&rf.cps, "cycles-per-second", 0, "clock rate in Hz stored in the preferences (0 = model default); the core does not read it")
	root.PersistentFlags().BoolVar(&rf.noPrefetch, "no-prefetch", false, "disable the prefetch queue and fetch straight through the bus")
	root.PersistentFlags().BoolVar(&rf.a20, "a20", false, "gate A20 on at startup")
	root.PersistentFlags().BoolVar(&rf.randomState, "random-state", false, "seed general registers with an undefined value on reset instead of zero")
	root.PersistentFlags().StringVar(&rf.savePrefs, "save-config", "", "also write the resolved preferences to this path")

	root.AddCommand(newRunCmd(&rf))
	root.AddCommand(newDumpCmd(&rf))

	return root
}

// resolvePreferences loads rf.config (if set) and layers any explicitly
// passed flags on top, matching §6's "CLI flags seed a Preferences before
// constructing the CPU" contract.
func resolvePreferences(cmd *cobra.Command, rf *rootFlags) (preferences.Preferences, error) {
	p := preferences.Defaults()
	if rf.config != "" {
		loaded, err := preferences.Load(rf.config)
		if err != nil {
			return p, err
		}
		p = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		p.Model = preferences.Model(rf.model)
	}
	if flags.Changed("cycles-per-second") {
		p.CyclesPerSecond = rf.cps
	}
	if flags.Changed("no-prefetch") {
		p.Prefetch = !rf.noPrefetch
	}
	if flags.Changed("a20") {
		p.A20 = rf.a20
	}
	if flags.Changed("random-state") {
		p.RandomState = rf.randomState
	}

	if rf.savePrefs != "" {
		if err := p.Save(rf.savePrefs); err != nil {
			return p, err
		}
	}
	return p, nil
}

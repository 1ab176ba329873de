package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AdminOfLife/pcjs/statsview"
)

type runFlags struct {
	image  string
	org    uint32
	cs     uint16
	ip     uint16
	cycles int
	stats  bool
	seed   int64
}

func newRunCmd(rf *rootFlags) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a raw binary image and execute it for a cycle budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(cmd, rf, &f)
		},
	}

	cmd.Flags().StringVar(&f.image, "image", "", "raw binary image to load (required)")
	cmd.Flags().Uint32Var(&f.org, "org", 0, "linear address to load the image at")
	cmd.Flags().Uint16Var(&f.cs, "cs", 0, "entry CS segment selector; giving --cs or --ip overrides the reset vector")
	cmd.Flags().Uint16Var(&f.ip, "ip", 0, "entry IP; overrides the reset vector if given")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random source seed for --random-state")
	cmd.Flags().IntVar(&f.cycles, "cycles", 1_000_000, "cycle budget; the run stops early if the CPU halts")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "serve a live statsview dashboard while running")
	cmd.MarkFlagRequired("image")

	return cmd
}

func runMachine(cmd *cobra.Command, rf *rootFlags, f *runFlags) error {
	p, err := resolvePreferences(cmd, rf)
	if err != nil {
		return err
	}

	c, ram, err := buildMachine(p, f.seed)
	if err != nil {
		return err
	}

	image, err := os.ReadFile(f.image)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	buf := make([]byte, int(f.org)+len(image))
	copy(buf[f.org:], image)
	ram.Load(buf)

	if cmd.Flags().Changed("cs") || cmd.Flags().Changed("ip") {
		c.CS.LoadReal(f.cs)
		c.IP.Load(f.ip)
		c.Prefetch.Flush(c.CS.Linear(uint32(c.IP.Value())))
	}

	if f.stats {
		if !statsview.Available() {
			fmt.Fprintln(cmd.OutOrStderr(), "warning: binary was not built with -tags statsview, --stats has no effect")
		}
		statsview.Launch(cmd.OutOrStdout())
	}

	spent, runErr := c.StepCPU(f.cycles)
	fmt.Fprintf(cmd.OutOrStdout(), "ran %d cycles (budget %d), halted=%v\n%s\n", spent, f.cycles, c.Halted, dumpRegisters(c))
	return runErr
}

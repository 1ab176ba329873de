package main

import (
	"fmt"
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/spf13/cobra"
)

type dumpFlags struct {
	out  string
	seed int64
}

func newDumpCmd(rf *rootFlags) *cobra.Command {
	var f dumpFlags

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Render a freshly reset CPU's register/descriptor-cache object graph as a GraphViz dot file",
		Long: `dump constructs a CPU from the resolved preferences, leaves it at its
reset state, and writes its object graph in GraphViz dot format for
offline inspection of the register file and segment-descriptor caches.
It never executes any instruction.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpMachine(cmd, rf, &f)
		},
	}

	cmd.Flags().StringVar(&f.out, "out", "", "write the dot file here instead of stdout")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random source seed for --random-state")

	return cmd
}

func dumpMachine(cmd *cobra.Command, rf *rootFlags, f *dumpFlags) error {
	p, err := resolvePreferences(cmd, rf)
	if err != nil {
		return err
	}

	c, _, err := buildMachine(p, f.seed)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.out, err)
		}
		defer file.Close()
		w = file
	}

	memviz.Map(w, c)
	return nil
}

//go:build statsview
// +build statsview

// Package statsview is an optional package, built only when the
// "statsview" tag is present, that serves a live HTTP page of runtime
// statistics via github.com/go-echarts/statsview. It shows the Go
// runtime charts statsview collects by default; no core-specific chart
// (cycles/sec, instruction mix) is added.
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Address is where the dashboard listens.
const Address = "localhost:12601"
const url = "/debug/statsview"

// Launch starts the dashboard in its own goroutine.
func Launch(output io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(Address))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(output, "stats server available at %s%s\n", Address, url)
}

// Available reports whether a statsview dashboard was compiled in.
func Available() bool { return true }

//go:build !statsview
// +build !statsview

package statsview

import "io"

// Launch is a no-op in a build without the "statsview" tag.
func Launch(output io.Writer) {
	io.WriteString(output, "stats dashboard not available: build with -tags statsview\n")
}

// Available reports whether a statsview dashboard was compiled in.
func Available() bool { return false }

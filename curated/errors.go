// Package curated implements pattern-based errors that carry enough
// structure for the cpu package to route them to the right interrupt
// vector instead of aborting the emulation.
package curated

import (
	"fmt"
	"strings"
)

// Category classifies a curated error against the fault table in the
// specification's error handling design. Fatal is reserved for
// host-level conditions the core cannot recover from by raising an
// architected interrupt.
type Category int

// Enumeration of fault categories.
const (
	None Category = iota
	UD            // invalid opcode
	DE            // divide error
	DB            // debug trap
	BP            // breakpoint (INT3)
	OF            // INTO overflow
	BR            // BOUND range exceeded
	GP            // general protection
	NP            // segment not present
	SS            // stack fault
	TS            // invalid TSS
	DF            // double fault
	Fatal         // host-level, unrecoverable
)

// Vector returns the architected interrupt vector associated with a
// fault category, or -1 if the category has no fixed vector (Fatal,
// None).
func (c Category) Vector() int {
	switch c {
	case UD:
		return 6
	case DE:
		return 0
	case DB:
		return 1
	case BP:
		return 3
	case OF:
		return 4
	case BR:
		return 5
	case DF:
		return 8
	case TS:
		return 10
	case NP:
		return 11
	case SS:
		return 12
	case GP:
		return 13
	}
	return -1
}

// HasErrorCode reports whether the fault pushes an error code onto the
// stack when it is raised in protected mode.
func (c Category) HasErrorCode() bool {
	switch c {
	case DF, TS, NP, SS, GP:
		return true
	}
	return false
}

// curated is the concrete error implementation. Values of this type are
// never exported; callers interact through Errorf, Fault, IsAny,
// CategoryOf and ErrorCodeOf.
type curated struct {
	category Category
	selector int
	pattern  string
	values   []interface{}
}

// Errorf creates a new curated error of no particular category (it will
// never be interpreted as an architected fault).
func Errorf(pattern string, values ...interface{}) error {
	return curated{pattern: pattern, values: values}
}

// Fault creates a curated error tagged with a fault category and,
// optionally, the selector/index that is pushed as the error code when
// the fault is raised in protected mode (pass 0 when not applicable).
func Fault(category Category, selector int, pattern string, values ...interface{}) error {
	return curated{category: category, selector: selector, pattern: pattern, values: values}
}

// Error implements the go language error interface. Adjacent duplicate
// message parts (common when wrapping) are collapsed.
func (e curated) Error() string {
	s := fmt.Errorf(e.pattern, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// IsAny reports whether err is a curated error of any category.
func IsAny(err error) bool {
	_, ok := err.(curated)
	return ok
}

// CategoryOf extracts the fault category from err, returning None if err
// is not a curated error or carries no category.
func CategoryOf(err error) Category {
	c, ok := err.(curated)
	if !ok {
		return None
	}
	return c.category
}

// ErrorCodeOf extracts the selector/index recorded with a Fault error,
// for use as the pushed error code.
func ErrorCodeOf(err error) int {
	c, ok := err.(curated)
	if !ok {
		return 0
	}
	return c.selector
}

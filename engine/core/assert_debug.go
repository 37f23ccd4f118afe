//go:build !release

package core

import "fmt"

// DebugBuild is false when built with the release tag.
const DebugBuild = true

// Assert panics with the formatted message when cond is false.
// Contract violations are programming errors and stop the program in
// debug builds; release builds compile the check away.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

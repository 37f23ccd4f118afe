//go:build release

package core

const DebugBuild = false

func Assert(cond bool, format string, args ...interface{}) {}

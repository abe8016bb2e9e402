// Package sysmem obtains raw page memory for the pool allocator directly
// from the operating system. On unix builds pages come from an anonymous
// private mapping, keeping pool pages off the Go heap; elsewhere a plain
// byte slice stands in. Either way the returned memory is zeroed.
package sysmem

import "errors"

// ErrNoMemory is returned when the operating system refuses to hand out the
// requested amount of memory.
var ErrNoMemory = errors.New("sysmem: out of system memory")

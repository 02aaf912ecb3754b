// Package demo contains small example backends driven through the host
// bridge.
//
// The box demo mounts a composite that toggles a single box between
// visible and invisible on a timer. The pancake demo mounts a nested host
// tree whose inner tags are only known to the root's type map.
//
// Backend nodes write one line per side effect to the Env's writer so
// the demos can be followed from a terminal.
package demo

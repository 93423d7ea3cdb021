// Package daemon wires the drawer together: it owns the surface manager,
// render context, grid and input controller, and runs every handler on the
// event loop goroutine. The GTK backend, the inventory watcher and the D-Bus
// control server only ever reach it through loop actions.
package daemon

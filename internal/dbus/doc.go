// Package dbus connects the drawer to the system and session buses.
//
// InventoryMonitor listens on the system bus for package manager signals
// that mean applications were installed or removed. It never publishes.
//
// ControlServer exports a small session bus interface so a compositor key
// binding can show, hide or toggle a running drawer, or force a rescan.
package dbus

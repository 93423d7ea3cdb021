// Package desktop builds the application inventory from desktop entry files.
//
// Descriptors are read from $XDG_DATA_HOME/applications followed by every
// $XDG_DATA_DIRS/applications directory. A desktop ID found in an earlier
// directory shadows the same ID in later ones, including when the earlier
// descriptor is hidden. The resulting list is sorted by case-folded name with
// the joined command line as tie-break.
//
// Watcher re-runs the scan after filesystem or bus notifications and hands
// each complete replacement list to a callback.
package desktop

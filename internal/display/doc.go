// Package display is the GTK4 backend of the drawer: a layer-shell window
// with a drawing area, the cairo canvas the grid paints into, the Pango
// text shaper and the gdk-pixbuf vector icon decoder.
//
// Everything here runs on the GTK main thread. Input is forwarded to the
// event loop; painting happens inside the drawing area's draw callback.
package display

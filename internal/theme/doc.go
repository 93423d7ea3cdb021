// Package theme loads the drawer's CSS themes from ~/.config/appdrawer/themes/
// or the embedded set, applies them to the display and reloads them when
// the file or one of its imports changes.
//
// A theme styles the drawer window with ordinary GTK CSS and colours the
// grid through @define-color entries named drawer_background, drawer_focus,
// drawer_label and drawer_initial. A "_dark" suffix gives the dark scheme
// variant.
package theme

// Package audio plays short feedback sounds when the drawer launches an
// application or a launch fails. WAV, OGG and MP3 files are decoded with
// beep and kept in memory so repeated launches do not touch the disk.
package audio

// Package ui implements the terminal now-playing viewer.
//
// The viewer polls the session flow for the currently playing track, renders
// title, artist, album, a progress bar, and the Genius lyrics link when one
// exists. Playback state refreshes on a fixed tick and on demand.
package ui

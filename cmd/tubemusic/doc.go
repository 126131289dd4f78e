// Package main hosts the tubemusic CLI.
//
// The root command exports a manifest. "resolve" lists the tracks a
// manifest describes without downloading anything, "watch" exports again
// whenever the manifest changes, and "settings" manages the settings file.
//
// Flags override the settings file, which overrides the built-in defaults.
// TUBEMUSIC_* variables, optionally from a .env file in the working
// directory, override the settings file.
package main

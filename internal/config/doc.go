// Package config provides configuration management for tubemusic.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - TUBEMUSIC_* environment overrides
//   - Conversion to PathConfig and TagConfig for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Exports to ~/Music/tubemusic/{album}/{title}.mp3
//	// Four tracks rendered at a time
//	// ID3 tagging and embedded covers enabled
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	settings.ApplyEnv(os.Getenv)
//	if err := settings.Validate(); err != nil {
//	    return err
//	}
//
// A missing file is not an error; Load returns the defaults.
//
// # Saving Settings
//
//	settings.OutputDir = "/srv/music"
//	err := settings.Save(config.DefaultPath())
package config

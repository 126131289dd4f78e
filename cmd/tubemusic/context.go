package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/handiism/tubemusic/internal/config"
	"github.com/handiism/tubemusic/internal/logging"
)

type commandContext struct {
	settingsFlag *string
	logFlag      *string

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error

	// getenv is os.Getenv outside of tests.
	getenv func(string) string
}

func newCommandContext(settingsFlag, logFlag *string) *commandContext {
	return &commandContext{
		settingsFlag: settingsFlag,
		logFlag:      logFlag,
		getenv:       os.Getenv,
	}
}

// settingsPath returns the --settings flag or the default location.
func (c *commandContext) settingsPath() string {
	if c.settingsFlag != nil {
		if path := strings.TrimSpace(*c.settingsFlag); path != "" {
			return path
		}
	}
	return config.DefaultPath()
}

// ensureSettings loads the settings file once and applies the environment.
func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		settings, err := config.Load(c.settingsPath())
		if err != nil {
			c.settingsErr = err
			return
		}
		settings.ApplyEnv(c.getenv)
		if c.logFlag != nil && *c.logFlag != "" {
			settings.LogLevel = *c.logFlag
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

// logger builds the logger described by the settings. Logs go to stderr so
// they do not mix with command output.
func (c *commandContext) logger(settings *config.Settings, stderr io.Writer) (*logrus.Logger, error) {
	return logging.New(logging.Options{
		Level:  settings.LogLevel,
		Format: logging.Format(settings.LogFormat),
		Output: stderr,
	})
}

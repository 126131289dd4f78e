// Package logging builds the logrus loggers used by the tubemusic commands.
//
// Text output uses full timestamps and is coloured only when written to a
// terminal. JSON output is meant for log collectors.
//
//	logger, err := logging.New(logging.Options{Level: "debug"})
//	if err != nil {
//	    return err
//	}
//	log := logging.Module(logger, "export")
//	log.WithField("track", title).Info("rendered")
package logging

// Package export turns resolved tracks into tagged MP3 files.
//
// A Manager first plans a manifest into Jobs, one per resolved track, each
// with its output path. Run then fetches the audio of every part, cuts and
// joins the parts with ffmpeg, embeds tags and cover art, and finally
// writes a playlist and a cover image per output folder.
//
// Basic usage:
//
//	mgr, err := export.NewManager(export.Options{
//	    Settings: settings,
//	    Source:   ytClient,
//	    Renderer: audio.NewRenderer(settings.FFmpegPath, logger),
//	    Logger:   logger,
//	    OnProgress: func(e export.ProgressEvent) {
//	        fmt.Println(e.Message)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	jobs, err := mgr.Plan(doc)
//	if err != nil {
//	    return err
//	}
//	summary, err := mgr.Run(ctx, jobs)
//
// # Concurrency
//
// Up to settings.MaxConcurrentTracks tracks are exported in parallel. The
// output directory is locked for the duration of a Run; a second Run on the
// same directory fails with ErrLocked.
//
// # Retry Logic
//
// A failing track is retried settings.MaxRetries times in total, waiting
// RetryCooldown * RetryExponent^n seconds between attempts. Tracks that
// still fail are counted in the Summary and do not stop the Run.
package export

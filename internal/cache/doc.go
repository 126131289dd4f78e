// Package cache memoises remote lookups for the duration of an export run:
// playlist member lists, downloaded audio streams and thumbnails.
//
// A manifest often points at the same video or playlist more than once. A
// Split track cut into ten parts, or a Playlist where every slot asks for
// the member list, would otherwise hit YouTube and yt-dlp once per track.
// Memo keeps the first answer and hands it to every later caller.
//
// Basic usage:
//
//	members := cache.NewMemo[[]string](0)
//
//	urls, err := members.Get(playlistURL, func() ([]string, error) {
//	    return fetchMembers(ctx, playlistURL)
//	})
//	if err != nil {
//	    return err
//	}
//
// Keys are plain strings. Callers that cache more than one kind of value
// use one Memo per kind rather than prefixing keys.
//
// # Expiry
//
// NewMemo takes a time to live. Zero keeps entries until Forget or Clear,
// which is what an export run wants since it is short lived. A positive
// ttl bounds how stale an answer can get in a long running process:
//
//	thumbs := cache.NewMemo[string](10 * time.Minute)
//
// Expired entries stay in the map until they are replaced, so Len counts
// them.
//
// # Concurrency
//
// A Memo is safe for concurrent use. Concurrent Get calls for the same key
// share a single call to load; the others wait for its result:
//
//	g, ctx := errgroup.WithContext(ctx)
//	for _, job := range jobs {
//	    g.Go(func() error {
//	        // Only one download of job.URL runs at a time.
//	        _, err := streams.Get(job.URL, func() (Stream, error) {
//	            return download(ctx, job.URL)
//	        })
//	        return err
//	    })
//	}
//
// # Errors
//
// Errors are returned to every waiter of the failed load but are never
// stored. The next Get for the key calls load again, so a retried track
// gets a fresh attempt:
//
//	if _, err := memo.Get(key, load); err != nil {
//	    // memo.Peek(key) reports false here.
//	}
//
// Peek reads an entry without loading. Forget drops a single key and Clear
// drops them all.
package cache

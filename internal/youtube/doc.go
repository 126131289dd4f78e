// Package youtube talks to YouTube on behalf of the exporter.
//
// Audio streams and thumbnails are fetched with the yt-dlp binary. Playlist
// members are listed with yt-dlp as well, or with the YouTube Data API when
// an API key is configured:
//
//	lister, err := youtube.NewAPILister(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	client, err := youtube.NewClient(youtube.Options{Lister: lister})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	url, err := client.Member(ctx, playlistURL, 3)
//	stream, err := client.Fetch(ctx, url)
//
// Every lookup is memoised for the lifetime of the Client, so a playlist is
// listed once however many of its entries a manifest uses.
package youtube

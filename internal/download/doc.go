// Package download runs the per-track pipeline over a stream of catalog ids.
//
// # Manager
//
// The Manager takes each id in input order through:
//
//  1. Resolve the track, falling back to the first playable alternative
//  2. Select a content file (OGG_VORBIS_320, then OGG_VORBIS_160)
//  3. Claim the output path and skip files that already exist
//  4. Transfer and decode the content
//  5. Transcode to MP3 with ffmpeg
//  6. Write ID3v2.4 tags, with cover art when available
//
// A collection id expands to the same pipeline for each member, and can
// produce a playlist file next to the tracks.
//
// # Basic Usage
//
//	fetcher := transfer.NewFetcher(session, transfer.Passthrough{}, transfer.Options{})
//	manager := download.NewManager(session, fetcher, download.Config{
//	    Paths: model.DefaultPathConfig("/music"),
//	}, func(r download.Result) {
//	    fmt.Println(r.Status, r.Path)
//	})
//
//	results, err := manager.Run(ctx, spotify.NewExtractor(false).Extract(os.Stdin))
//
// # Outcomes
//
// Every item produces one Result. A failure in one item never stops the
// run; Run only returns an error when ctx is cancelled. Existing files are
// skipped unless Config.Refresh is set, in which case only their tags are
// rewritten.
//
// # Hook Mode
//
// With Config.HookPath set, the decoded audio is piped to that program
// instead of being written, transcoded and tagged.
package download

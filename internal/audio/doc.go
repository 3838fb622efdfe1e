// Package audio turns decoded media into finished MP3 files.
//
// A Transcoder shells out to ffmpeg. The intermediate media file is removed
// whether or not conversion succeeds, and a failure wraps ErrTranscode
// without leaving partial output:
//
//	t := audio.NewTranscoder("ffmpeg", 0)
//	err := t.Transcode(ctx, out.MediaPath, out.FinalPath)
//
// A Tagger replaces the ID3v2.4 block of an MP3 with the contents of a
// model.Tags. When a track came from a collection, the collection name
// occupies the genre frame.
//
// PlaylistCreator renders M3U, PLS, WPL and ZPL files listing a
// collection's tracks by base name.
package audio

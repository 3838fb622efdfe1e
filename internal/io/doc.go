// Package ioutils holds the file system helpers used when placing tracks:
// filename sanitization, directory creation, existence checks and writing
// decoded media. It also prepares cover art for embedding.
//
//	safe := ioutils.SanitizeFileName("AC/DC: Live") // "AC-DC_ Live"
//	art, err := ioutils.NewImageService().PrepareCover(ctx, data, 640)
package ioutils

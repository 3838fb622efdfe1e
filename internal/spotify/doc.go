// Package spotify defines the boundary to the catalog and content service.
//
// It contains the link Extractor that turns input lines into catalog
// identifiers and the Session contract the download pipeline is written
// against. Concrete sessions live in the gateway subpackage; the webapi
// subpackage offers an alternative CollectionSource backed by the public
// Web API.
//
// # Supported links
//
//	spotify:track:4uLU6hMCjMI75M1A2tKUQC
//	https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=...
//	https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC
//	https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M
//	spotify:playlist:37i9dQZF1DXcBWIGoYBM5M
package spotify

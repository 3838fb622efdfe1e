// Package gateway implements spotify.Session over a small JSON HTTP API.
//
// The gateway is a companion process that holds the actual catalog
// connection. This package only speaks its wire protocol:
//
//	POST /v1/login                      {username, password} -> {token}
//	GET  /v1/tracks/{base62}            track record
//	GET  /v1/albums/{base62}            album record
//	GET  /v1/artists/{base62}           artist record
//	GET  /v1/playlists/{base62}         collection record
//	GET  /v1/keys/{track}/{file hex}    {key: base64}, 404 when absent
//	GET  /v1/files/{file hex}?bitrate=N encoded stream
//
// All requests after login carry the token as a bearer credential and are
// rate limited.
package gateway

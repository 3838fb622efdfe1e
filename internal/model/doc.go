// Package model defines the core data structures used throughout spotrip.
//
// # Catalog records
//
// Track, Album, Artist and Collection mirror the records served by the
// session gateway. They are read-only once fetched:
//
//	track, err := session.Track(ctx, id)
//	if !track.Available() {
//	    // resolve an alternative
//	}
//
// # Identifiers
//
// ID is the 128-bit catalog identifier. It round-trips through the
// base62 form used in links and the hex form used by the gateway:
//
//	id, err := model.ParseBase62("4uLU6hMCjMI75M1A2tKUQC")
//	fmt.Println(id.Hex())
//
// # Output paths
//
// Output holds the computed destination of one track:
//
//	out := model.NewOutput("Road Trip", []string{"AC/DC"}, "Thunderstruck", cfg)
//	fmt.Println(out.FinalPath) // "<root>/Road Trip/AC-DC - Thunderstruck.mp3"
package model

// Package transfer fetches and decodes content streams.
//
// A Fetcher asks the session for the content key, opens the encoded
// stream, reads it to completion on a worker goroutine and hands the
// bytes to a Decoder. At most one worker runs at a time across the
// process.
//
// Decoding itself happens outside this program: CommandDecoder pipes the
// stream through a configured executable, and Passthrough is used when
// the gateway already returns decoded bytes.
package transfer

// Package http provides the HTTP client shared by the session gateway,
// content transfer and the artwork fetcher.
//
//	client := http.NewClient(http.WithTimeout(30 * time.Second))
//	img, err := client.DownloadBytes(ctx, coverURL, 10<<20)
//
//	var out struct{ Token string `json:"token"` }
//	err = client.PostJSON(ctx, base+"/v1/login", creds, &out)
//
// Non-2xx responses are reported as *StatusError so callers can map
// specific codes to their own sentinel errors.
package http

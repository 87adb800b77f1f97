package accounts

import "net/url"

// DefaultBackURL is the safe landing page used when a requested redirect
// target can not be honored.
const DefaultBackURL = "/my/page"

// SanitizeBackURL validates a caller supplied post-login redirect target. The
// candidate is URL-decoded and parsed; relative URLs and absolute URLs whose
// host matches requestHost are returned decoded, anything else degrades to the
// fallback. Unsafe input is never reported back to the client, the caller just
// gets the fallback.
func SanitizeBackURL(candidate, requestHost, fallback string) string {
	if candidate == "" {
		return fallback
	}
	decoded, err := url.QueryUnescape(candidate)
	if err != nil {
		return fallback
	}
	u, err := url.Parse(decoded)
	if err != nil {
		return fallback
	}
	if u.Host == "" || u.Host == requestHost {
		return decoded
	}
	return fallback
}

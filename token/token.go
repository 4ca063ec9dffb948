// Package token carries the opaque session credential issued by the
// attendance backend. The backend speaks a cookie-style session protocol:
// the credential travels out as a Cookie header and comes back, when the
// server renews it, as a Set-Cookie header. Extraction is explicit here so
// that no platform cookie jar is involved.
package token

import "net/http"

// cookieName is the session cookie the backend issues and expects back.
const cookieName = "JSESSIONID"

// Token is an opaque backend-issued session credential. The client never
// inspects or validates its shape.
type Token string

// IsZero reports whether the token is absent.
func (t Token) IsZero() bool {
	return t == ""
}

// Attach adds the token to an outbound request as a cookie-style credential.
// A zero token attaches nothing.
func (t Token) Attach(req *http.Request) {
	if t.IsZero() {
		return
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: string(t)})
}

// FromResponse scans a response's Set-Cookie headers for a freshly issued
// session token. It returns the token and true when the server sent one,
// regardless of the response status.
func FromResponse(resp *http.Response) (Token, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return Token(c.Value), true
		}
	}
	return "", false
}

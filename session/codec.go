package session

import (
	"encoding/base64"
	"strings"
)

// Credentials is a decoded username+password pair. It is never persisted;
// the plaintext password exists only for the duration of a login call.
type Credentials struct {
	Username string
	Password string
}

const credentialSeparator = ":"

// EncodeCredentials produces the wire representation of a credential pair:
// standard base64 of "username:password". The returned string is exactly
// what the store later recognizes as the session token. Usernames
// containing the separator do not round-trip; DecodeCredentials splits at
// the first occurrence.
func EncodeCredentials(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + credentialSeparator + password))
}

// DecodeCredentials parses the raw Authorization header value. It returns
// false when the header is empty, not valid base64, or missing the
// separator. Malformed input is not an error condition — it degrades to
// "no credentials" and the caller applies policy.
func DecodeCredentials(header string) (Credentials, bool) {
	if header == "" {
		return Credentials{}, false
	}

	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return Credentials{}, false
	}

	username, password, ok := strings.Cut(string(raw), credentialSeparator)
	if !ok {
		return Credentials{}, false
	}

	return Credentials{Username: username, Password: password}, true
}

package dnsmadeeasy

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA1 of timestamp keyed by secret,
// as expected in the X-dnsme-hmac header. The timestamp must be the exact
// string sent in X-dnsme-requestDate.
func Sign(timestamp, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

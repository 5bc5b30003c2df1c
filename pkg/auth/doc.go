// Package auth signs WEEX contract API requests.
//
// A request is authenticated by four headers. ACCESS-SIGN is the standard
// Base64 encoding of HMAC-SHA256(secret, timestamp + METHOD + requestPath + body),
// where requestPath carries the encoded query string and body is the exact
// serialized payload sent on the wire.
package auth

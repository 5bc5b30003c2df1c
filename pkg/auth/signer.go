package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weex/pkg/core"
)

// Header names required on every signed request.
const (
	HeaderAccessKey        = "ACCESS-KEY"
	HeaderAccessSign       = "ACCESS-SIGN"
	HeaderAccessTimestamp  = "ACCESS-TIMESTAMP"
	HeaderAccessPassphrase = "ACCESS-PASSPHRASE"
)

// Signer produces authentication headers from a fixed set of credentials.
// It is immutable and safe for concurrent use.
type Signer struct {
	creds core.Credentials
}

// NewSigner copies creds into a Signer after checking every field is set.
func NewSigner(creds *core.Credentials) (*Signer, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &Signer{creds: *creds}, nil
}

// APIKey returns the public key the signer identifies with.
func (s *Signer) APIKey() string {
	return s.creds.APIKey
}

// SignedRequest is a request's signing input together with the resulting headers.
type SignedRequest struct {
	Method    string
	Path      string
	Timestamp string
	Body      string
	Headers   map[string]string
}

// Sign computes the headers for one request. method is case-insensitive and
// must be GET, POST or DELETE. timestamp must be a fresh value from Timestamp.
func (s *Signer) Sign(method, requestPath, body, timestamp string) (*SignedRequest, error) {
	if err := s.creds.Validate(); err != nil {
		return nil, err
	}

	m, err := normalizeMethod(method)
	if err != nil {
		return nil, err
	}
	if requestPath == "" || requestPath[0] != '/' {
		return nil, &core.InvalidValueError{Field: "request path", Value: requestPath, Reason: "must start with /"}
	}
	if timestamp == "" {
		return nil, &core.InvalidValueError{Field: "timestamp", Value: timestamp, Reason: "must not be empty"}
	}

	sign := signHMAC(timestamp+m+requestPath+body, s.creds.SecretKey)

	return &SignedRequest{
		Method:    m,
		Path:      requestPath,
		Timestamp: timestamp,
		Body:      body,
		Headers: map[string]string{
			HeaderAccessKey:        s.creds.APIKey,
			HeaderAccessSign:       sign,
			HeaderAccessTimestamp:  timestamp,
			HeaderAccessPassphrase: s.creds.Passphrase,
		},
	}, nil
}

// Redacted returns a copy of the headers that is safe to log.
func (r *SignedRequest) Redacted() map[string]string {
	out := make(map[string]string, len(r.Headers))
	maps.Copy(out, r.Headers)
	RedactHeaders(out)
	return out
}

// RedactHeaders masks the credential headers of h in place. Header names are
// matched case-insensitively.
func RedactHeaders(h map[string]string) {
	for k, v := range h {
		switch {
		case strings.EqualFold(k, HeaderAccessKey), strings.EqualFold(k, HeaderAccessSign):
			h[k] = Mask(v)
		case strings.EqualFold(k, HeaderAccessPassphrase):
			h[k] = "****"
		}
	}
}

// Mask keeps the first and last four characters of s.
func Mask(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// Timestamp formats t as milliseconds since the Unix epoch.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func normalizeMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
		return m, nil
	}
	return "", &core.InvalidValueError{Field: "method", Value: method, Reason: "must be GET, POST or DELETE"}
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

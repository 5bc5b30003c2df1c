package core

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
)

// Params holds query parameters for a request.
type Params map[string]any

// Request describes one REST call before it is signed and sent.
type Request struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Query       Params `json:"query,omitempty"`
	Body        any    `json:"body,omitempty"`
	Bucket      string `json:"bucket,omitempty"`
	RequireAuth bool   `json:"require_auth"`
}

// NewRequest creates a request for method and path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Query:  make(Params),
	}
}

func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

func (r *Request) SetQueryParams(params Params) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	maps.Copy(r.Query, params)
	return r
}

func (r *Request) SetBody(body any) *Request {
	r.Body = body
	return r
}

// SetBucket names the rate limit bucket the request is charged against.
func (r *Request) SetBucket(bucket string) *Request {
	r.Bucket = bucket
	return r
}

func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}

// QueryString encodes the query parameters sorted by key, without the leading "?".
func (r *Request) QueryString() string {
	if len(r.Query) == 0 {
		return ""
	}
	values := make(url.Values, len(r.Query))
	for k, v := range r.Query {
		values.Set(k, formatParam(v))
	}
	return values.Encode()
}

// RequestPath returns the path plus encoded query string, the exact form that is
// both signed and sent.
func (r *Request) RequestPath() string {
	qs := r.QueryString()
	if qs == "" {
		return r.Path
	}
	return r.Path + "?" + qs
}

func formatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

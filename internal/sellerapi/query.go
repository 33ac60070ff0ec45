package sellerapi

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query is the filter sent to GET /seller/products. Nil numbers and blank
// text are left out of the query string.
type Query struct {
	Q        string
	Statuses []Status
	Limit    *int
	Offset   *int
}

// Encode renders the query without a leading "?". Output order is fixed:
// status_in (repeated, in slice order), q, limit, offset.
func (q Query) Encode() string {
	var parts []string
	for _, s := range q.Statuses {
		if v := strings.TrimSpace(string(s)); v != "" {
			parts = append(parts, "status_in="+url.QueryEscape(v))
		}
	}
	if v := strings.TrimSpace(q.Q); v != "" {
		parts = append(parts, "q="+url.QueryEscape(v))
	}
	if q.Limit != nil {
		parts = append(parts, "limit="+strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		parts = append(parts, "offset="+strconv.Itoa(*q.Offset))
	}
	return strings.Join(parts, "&")
}

// String is Encode with a "?" prefix, or "" when nothing is set.
func (q Query) String() string {
	if s := q.Encode(); s != "" {
		return "?" + s
	}
	return ""
}

// QueryFromValues builds a Query from raw form or URL input. Numbers that do
// not parse as finite values count as unset, not zero.
func QueryFromValues(v url.Values) Query {
	q := Query{Q: strings.TrimSpace(v.Get("q"))}
	for _, s := range v["status_in"] {
		if s = strings.TrimSpace(s); s != "" {
			q.Statuses = append(q.Statuses, Status(s))
		}
	}
	q.Limit = finiteInt(v.Get("limit"))
	q.Offset = finiteInt(v.Get("offset"))
	return q
}

func finiteInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	return &n
}

// IntPtr is a small helper for building a Query literal.
func IntPtr(n int) *int { return &n }

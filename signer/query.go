package signer

import (
	"net/url"
	"sort"
	"strings"
)

//
// Param is a single query parameter.
//
type Param struct {
	Key   string
	Value string
}

//
// Query is an ordered list of query parameters. Unlike url.Values it keeps insertion order, which
// matters when the exact string sent is also the string signed.
//
type Query []Param

//
// Add appends a parameter, skipping empty values.
//
func (o Query) Add(key, value string) Query {
	if value == "" {
		return o
	}

	return append(o, Param{Key: key, Value: value})
}

//
// Encode renders the parameters as "a=1&b=2" in insertion order.
//
func (o Query) Encode() string {
	var b strings.Builder

	for i, p := range o {
		if i > 0 {
			b.WriteByte('&')
		}

		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}

	return b.String()
}

//
// Suffix renders the parameters with a leading "?", or the empty string if there are none.
//
func (o Query) Suffix() string {
	if len(o) == 0 {
		return ""
	}

	return "?" + o.Encode()
}

//
// Sorted returns a copy ordered by key, which is the canonical form some exchanges sign.
//
func (o Query) Sorted() Query {
	sorted := make(Query, len(o))
	copy(sorted, o)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	return sorted
}

package discovery

import (
	"fmt"
	"strings"
)

// Domain is a fixed filter key understood by GET /jobs/filter.
type Domain string

const (
	DomainAI     Domain = "ai"
	DomainWeb    Domain = "web"
	DomainData   Domain = "data"
	DomainMobile Domain = "mobile"
)

// Domains lists every domain in display order.
var Domains = []Domain{DomainAI, DomainWeb, DomainData, DomainMobile}

// ParseDomain validates a domain key, case-insensitively.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown domain %q (want ai, web, data or mobile)", s)
	}
	return d, nil
}

// Valid reports whether d is one of Domains.
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// Label is the display name.
func (d Domain) Label() string {
	switch d {
	case DomainAI:
		return "AI/ML"
	case DomainWeb:
		return "Web"
	case DomainData:
		return "Data"
	case DomainMobile:
		return "Mobile"
	}
	return string(d)
}

// QueryKind discriminates Query.
type QueryKind int

const (
	QueryNone QueryKind = iota
	QuerySearch
	QueryDomain
)

// Query is the active query: none, search(text) or domain(key).
// Only the field matching Kind is meaningful.
type Query struct {
	Kind   QueryKind
	Text   string
	Domain Domain
}

// NoQuery is the unfiltered listing.
func NoQuery() Query { return Query{} }

// SearchQuery searches by free text.
func SearchQuery(text string) Query { return Query{Kind: QuerySearch, Text: text} }

// DomainQuery filters by domain.
func DomainQuery(d Domain) Query { return Query{Kind: QueryDomain, Domain: d} }

// Equal compares by discriminant and the field it selects.
func (q Query) Equal(other Query) bool {
	if q.Kind != other.Kind {
		return false
	}
	switch q.Kind {
	case QuerySearch:
		return q.Text == other.Text
	case QueryDomain:
		return q.Domain == other.Domain
	}
	return true
}

func (q Query) String() string {
	switch q.Kind {
	case QuerySearch:
		return fmt.Sprintf("search(%q)", q.Text)
	case QueryDomain:
		return fmt.Sprintf("domain(%s)", q.Domain)
	}
	return "none"
}

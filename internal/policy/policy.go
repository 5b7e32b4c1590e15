// Package policy fetches and caches per-shop policy documents.
package policy

import (
	"strings"
	"time"
)

// Policies holds the canonical policy fields for one shop.
type Policies struct {
	Shipping       string `json:"shipping,omitempty"`
	Returns        string `json:"returns,omitempty"`
	Privacy        string `json:"privacy,omitempty"`
	TermsOfService string `json:"termsOfService,omitempty"`
	ContactEmail   string `json:"contactEmail,omitempty"`
}

// Entry is one cached policy document set.
type Entry struct {
	Shop      string    `json:"shop"`
	Policies  Policies  `json:"policies"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// RawPolicy is a policy document as returned by the shop's REST endpoint.
type RawPolicy struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// MapPolicies assigns raw documents to canonical fields by case-insensitive
// substring matching on the title. Unrecognized titles are dropped; when two
// documents map to the same field the first wins.
func MapPolicies(raw []RawPolicy, contactEmail string) Policies {
	p := Policies{ContactEmail: contactEmail}

	for _, doc := range raw {
		title := strings.ToLower(doc.Title)
		switch {
		case strings.Contains(title, "refund") || strings.Contains(title, "return"):
			if p.Returns == "" {
				p.Returns = doc.Body
			}
		case strings.Contains(title, "shipping"):
			if p.Shipping == "" {
				p.Shipping = doc.Body
			}
		case strings.Contains(title, "privacy"):
			if p.Privacy == "" {
				p.Privacy = doc.Body
			}
		case strings.Contains(title, "terms") || strings.Contains(title, "service"):
			if p.TermsOfService == "" {
				p.TermsOfService = doc.Body
			}
		}
	}

	return p
}

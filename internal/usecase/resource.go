package usecase

import (
	"encoding/json"

	"github.com/microcash/transactions-api/internal/domain"
)

// Link is a navigational link attached to a returned resource.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Resource is the read model served to clients and stored in the cache: the
// transaction wrapped with its links.
type Resource struct {
	Transaction *domain.Transaction `json:"transaction"`
	Links       []Link              `json:"links,omitempty"`
}

// AddSelfLink attaches a self link unless an identical one is present.
func (r *Resource) AddSelfLink(href string) {
	for _, l := range r.Links {
		if l.Rel == "self" && l.Href == href {
			return
		}
	}
	r.Links = append(r.Links, Link{Rel: "self", Href: href, Method: "GET"})
}

// decodeResource deserializes a cached single-item payload. Older cache
// entries may hold a bare transaction instead of the resource envelope; on
// structural mismatch the narrower shape is tried and wrapped rather than
// treated as a miss.
func decodeResource(payload string) (*Resource, bool) {
	var res Resource
	if err := json.Unmarshal([]byte(payload), &res); err == nil && res.Transaction != nil {
		return &res, true
	}

	var tx domain.Transaction
	if err := json.Unmarshal([]byte(payload), &tx); err == nil && tx.Txid != "" {
		return &Resource{Transaction: &tx}, true
	}

	return nil, false
}

func decodeResourceList(payload string) ([]Resource, bool) {
	var list []Resource
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, false
	}
	return list, true
}

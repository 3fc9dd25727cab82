package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Collection is a named, ordered shelf of products shown on the storefront.
type Collection struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Position  int           `json:"position"`
	Active    bool          `json:"active"`
	Members   []*Membership `json:"members"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Membership links a product to a collection at a 1-based position.
type Membership struct {
	CollectionID uuid.UUID `json:"collection_id"`
	ProductID    uuid.UUID `json:"product_id"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	Product      *Product  `json:"product"`
}

// MemberInput is one entry of a membership replacement list.
type MemberInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Position  int       `json:"position"`
}

// CollectionOrder assigns a display position to a collection.
type CollectionOrder struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

// NormalizeMembers orders the inputs by their requested position (ties keep
// input order) and renumbers them 1..N. A product may appear only once.
func NormalizeMembers(in []MemberInput) ([]MemberInput, error) {
	seen := make(map[uuid.UUID]struct{}, len(in))
	out := make([]MemberInput, 0, len(in))
	for _, m := range in {
		if m.ProductID == uuid.Nil {
			return nil, NewValidationError("members", "product id is required")
		}
		if _, dup := seen[m.ProductID]; dup {
			return nil, NewValidationError("members", "product "+m.ProductID.String()+" is listed more than once")
		}
		seen[m.ProductID] = struct{}{}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	for i := range out {
		out[i].Position = i + 1
	}
	return out, nil
}

// MoveMember moves productID to newPosition (1-based, clamped) and returns the
// resulting product order. ok is false when the product is not a member.
func MoveMember(order []uuid.UUID, productID uuid.UUID, newPosition int) (moved []uuid.UUID, ok bool) {
	from := -1
	for i, id := range order {
		if id == productID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, false
	}

	rest := make([]uuid.UUID, 0, len(order))
	rest = append(rest, order[:from]...)
	rest = append(rest, order[from+1:]...)

	to := newPosition - 1
	if to < 0 {
		to = 0
	}
	if to > len(rest) {
		to = len(rest)
	}

	moved = make([]uuid.UUID, 0, len(order))
	moved = append(moved, rest[:to]...)
	moved = append(moved, productID)
	moved = append(moved, rest[to:]...)
	return moved, true
}

// VisibleCollections drops collections left without members. Public listings
// hide shelves whose products are all inactive.
func VisibleCollections(in []*Collection) []*Collection {
	out := make([]*Collection, 0, len(in))
	for _, c := range in {
		if len(c.Members) > 0 {
			out = append(out, c)
		}
	}
	return out
}

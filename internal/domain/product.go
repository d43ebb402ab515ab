package domain

import "time"

// Product represents a catalog item shared into the service by a user.
// SavedBy is the set of user ids who have wished the product; it is the
// live source of truth for shared wishlist aggregation.
type Product struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Brand      string    `json:"brand"`
	Price      int64     `json:"price"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	ImageURL   string    `json:"imageUrl"`
	ProductURL string    `json:"productUrl,omitempty"`
	UploadedBy Identity  `json:"uploadedBy"`
	SavedBy    []string  `json:"savedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SavedByUser reports whether the given user has wished this product.
func (p *Product) SavedByUser(userID string) bool {
	for _, id := range p.SavedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// SharedWishlist is the derived, never-persisted view of the products the
// two participants of a bucket have saved. It is recomputed on every read
// so removed wishes disappear immediately.
type SharedWishlist struct {
	Items         []Product            `json:"items"`
	ByCategory    map[string][]Product `json:"itemsByCategory"`
	ByParticipant map[string][]Product `json:"itemsByUserId"`
}

// BuildSharedWishlist groups the given products by category and by owning
// participant. A product saved by both participants appears under each.
func BuildSharedWishlist(products []Product, participants []string) SharedWishlist {
	view := SharedWishlist{
		Items:         products,
		ByCategory:    make(map[string][]Product),
		ByParticipant: make(map[string][]Product),
	}
	if view.Items == nil {
		view.Items = []Product{}
	}

	member := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		member[p] = struct{}{}
	}

	for _, product := range products {
		view.ByCategory[product.Category] = append(view.ByCategory[product.Category], product)
		for _, saver := range product.SavedBy {
			if _, ok := member[saver]; ok {
				view.ByParticipant[saver] = append(view.ByParticipant[saver], product)
			}
		}
	}

	return view
}

package wishlist

import (
	"time"

	"github.com/google/uuid"

	product "github.com/shelflife/shelflife-backend/internal/products"
)

// WishlistItemDTO pairs a wishlisted product with when it was added.
type WishlistItemDTO struct {
	ID        uuid.UUID           `json:"id"`
	Product   *product.ProductDTO `json:"product"`
	CreatedAt time.Time           `json:"created_at"`
}

// WishlistPageDTO is one page of a customer's wishlist, newest first.
type WishlistPageDTO struct {
	Items      []WishlistItemDTO `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

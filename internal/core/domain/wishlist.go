package domain

import "time"

type WishlistItem struct {
	ID    string   `json:"id"`
	Kind  ItemKind `json:"itemType"`
	RefID string   `json:"item"`
}

type Wishlist struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (w *Wishlist) Contains(ref ItemRef) bool {
	for _, item := range w.Items {
		if item.Kind == ref.Kind && item.RefID == ref.ID {
			return true
		}
	}
	return false
}

// Remove drops the item with the given id. Missing ids are ignored.
func (w *Wishlist) Remove(id string) {
	kept := w.Items[:0]
	for _, item := range w.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	w.Items = kept
}

func (w *Wishlist) Clone() Wishlist {
	cp := *w
	cp.Items = append([]WishlistItem(nil), w.Items...)
	return cp
}

type WishlistItemView struct {
	WishlistItem
	Title       string `json:"title,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
}

type WishlistView struct {
	ID     string             `json:"id"`
	UserID string             `json:"user"`
	Items  []WishlistItemView `json:"items"`
}

package domain

import "time"

type CartItem struct {
	ID       string   `json:"id"`
	Kind     ItemKind `json:"itemType"`
	RefID    string   `json:"item"`
	Quantity int      `json:"quantity"`
}

func (i CartItem) Ref() ItemRef {
	return ItemRef{Kind: i.Kind, ID: i.RefID}
}

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Find returns the index of the item referencing ref, or -1.
func (c *Cart) Find(ref ItemRef) int {
	for i, item := range c.Items {
		if item.Kind == ref.Kind && item.RefID == ref.ID {
			return i
		}
	}
	return -1
}

func (c *Cart) ItemByID(id string) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// Remove drops the item with the given id. Missing ids are ignored.
func (c *Cart) Remove(id string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

func (c *Cart) Clone() Cart {
	cp := *c
	cp.Items = append([]CartItem(nil), c.Items...)
	return cp
}

// CartItemView is a cart line with the catalog display fields filled in.
type CartItemView struct {
	CartItem
	Title       string `json:"title,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
	Stock       *int   `json:"stock,omitempty"`
}

type CartView struct {
	ID     string         `json:"id"`
	UserID string         `json:"user"`
	Items  []CartItemView `json:"items"`
}

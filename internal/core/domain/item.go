package domain

import "fmt"

type ItemKind string

const (
	ItemKindCourse  ItemKind = "Course"
	ItemKindProduct ItemKind = "Product"
)

func (k ItemKind) Valid() bool {
	return k == ItemKindCourse || k == ItemKindProduct
}

func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: item kind %q", ErrInvalidInput, s)
	}
	return k, nil
}

// ItemRef points at one catalog entry, either a course or a product.
type ItemRef struct {
	Kind ItemKind `json:"itemType"`
	ID   string   `json:"item"`
}

func CourseRef(id string) ItemRef { return ItemRef{Kind: ItemKindCourse, ID: id} }
func ProductRef(id string) ItemRef { return ItemRef{Kind: ItemKindProduct, ID: id} }

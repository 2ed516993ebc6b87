package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateItem      = errors.New("item already present")
	ErrInsufficientStock  = errors.New("requested quantity exceeds available stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrItemNotFound       = errors.New("item no longer available")
	ErrOutOfStock         = errors.New("out of stock")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidStatus      = errors.New("invalid payment status")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// Kind is the stable machine-readable name of an error, sent to clients
// next to the human-readable message.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindDuplicateItem      Kind = "duplicate_item"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindInvalidQuantity    Kind = "invalid_quantity"
	KindEmptyCart          Kind = "empty_cart"
	KindItemNotFound       Kind = "item_not_found"
	KindOutOfStock         Kind = "out_of_stock"
	KindInvalidPrice       Kind = "invalid_price"
	KindInvalidStatus      Kind = "invalid_status"
	KindInvalidInput       Kind = "invalid_input"
	KindUserExists         Kind = "user_exists"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindDuplicateRequest   Kind = "duplicate_request"
	KindCheckoutInProgress Kind = "checkout_in_progress"
	KindStorageFailure     Kind = "storage_failure"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrDuplicateItem, KindDuplicateItem},
	{ErrInsufficientStock, KindInsufficientStock},
	{ErrInvalidQuantity, KindInvalidQuantity},
	{ErrEmptyCart, KindEmptyCart},
	{ErrItemNotFound, KindItemNotFound},
	{ErrOutOfStock, KindOutOfStock},
	{ErrInvalidPrice, KindInvalidPrice},
	{ErrInvalidStatus, KindInvalidStatus},
	{ErrInvalidInput, KindInvalidInput},
	{ErrUserExists, KindUserExists},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrUnauthorized, KindUnauthorized},
	{ErrForbidden, KindForbidden},
	{ErrDuplicateRequest, KindDuplicateRequest},
	{ErrCheckoutInProgress, KindCheckoutInProgress},
}

// KindOf returns the kind of the first known sentinel wrapped by err.
// Anything unrecognised is a storage failure.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindStorageFailure
}

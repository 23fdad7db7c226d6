package payments

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Checkout metadata travels through the payment provider and comes back on the
// completed-session webhook. It is the only correlation channel between a
// session and the purchase it stands for, so parsing is strict: a payload that
// does not validate is rejected rather than repaired.

// ErrMetadataInvalid reports checkout metadata that failed validation.
var ErrMetadataInvalid = errors.New("payments: checkout metadata invalid")

// MetadataSchemaVersion is the only schema version this build understands.
const MetadataSchemaVersion = "1"

// CheckoutKind discriminates what a checkout session pays for.
type CheckoutKind string

const (
	CheckoutKindCart   CheckoutKind = "cart"
	CheckoutKindBuyNow CheckoutKind = "buy_now"
)

const (
	metaKeyVersion   = "v"
	metaKeyUserID    = "userId"
	metaKeyAddressID = "addressId"
	metaKeyKind      = "type"
	metaKeyCartID    = "cartId"
	metaKeyProductID = "productId"
	metaKeyQuantity  = "quantity"
)

// CheckoutMetadata is the validated correlation payload attached to a session.
type CheckoutMetadata struct {
	Kind      CheckoutKind
	UserID    uuid.UUID
	AddressID uuid.UUID

	// CartID is set when Kind is CheckoutKindCart.
	CartID uuid.UUID

	// ProductID and Quantity are set when Kind is CheckoutKindBuyNow.
	ProductID uuid.UUID
	Quantity  int
}

// NewCartMetadata builds metadata for a whole-cart checkout.
func NewCartMetadata(userID, addressID, cartID uuid.UUID) CheckoutMetadata {
	return CheckoutMetadata{
		Kind:      CheckoutKindCart,
		UserID:    userID,
		AddressID: addressID,
		CartID:    cartID,
	}
}

// NewBuyNowMetadata builds metadata for a single-product checkout.
func NewBuyNowMetadata(userID, addressID, productID uuid.UUID, quantity int) CheckoutMetadata {
	return CheckoutMetadata{
		Kind:      CheckoutKindBuyNow,
		UserID:    userID,
		AddressID: addressID,
		ProductID: productID,
		Quantity:  quantity,
	}
}

// Encode renders the metadata as the string map the provider carries.
func (m CheckoutMetadata) Encode() map[string]string {
	out := map[string]string{
		metaKeyVersion:   MetadataSchemaVersion,
		metaKeyUserID:    m.UserID.String(),
		metaKeyAddressID: m.AddressID.String(),
		metaKeyKind:      string(m.Kind),
	}
	switch m.Kind {
	case CheckoutKindBuyNow:
		out[metaKeyProductID] = m.ProductID.String()
		out[metaKeyQuantity] = strconv.Itoa(m.Quantity)
	default:
		out[metaKeyCartID] = m.CartID.String()
	}
	return out
}

// ParseMetadata validates and decodes a raw metadata map. A missing type key
// means a cart checkout. Every other defect, including a quantity that does
// not parse as a positive integer, fails with ErrMetadataInvalid.
func ParseMetadata(raw map[string]string) (CheckoutMetadata, error) {
	if raw[metaKeyVersion] != MetadataSchemaVersion {
		return CheckoutMetadata{}, fmt.Errorf("%w: unsupported schema version %q", ErrMetadataInvalid, raw[metaKeyVersion])
	}

	userID, err := parseMetaUUID(raw, metaKeyUserID)
	if err != nil {
		return CheckoutMetadata{}, err
	}
	addressID, err := parseMetaUUID(raw, metaKeyAddressID)
	if err != nil {
		return CheckoutMetadata{}, err
	}

	kind := CheckoutKind(raw[metaKeyKind])
	if raw[metaKeyKind] == "" {
		kind = CheckoutKindCart
	}

	meta := CheckoutMetadata{Kind: kind, UserID: userID, AddressID: addressID}

	switch kind {
	case CheckoutKindCart:
		meta.CartID, err = parseMetaUUID(raw, metaKeyCartID)
		if err != nil {
			return CheckoutMetadata{}, err
		}
	case CheckoutKindBuyNow:
		meta.ProductID, err = parseMetaUUID(raw, metaKeyProductID)
		if err != nil {
			return CheckoutMetadata{}, err
		}
		quantity, err := strconv.Atoi(raw[metaKeyQuantity])
		if err != nil || quantity < 1 {
			return CheckoutMetadata{}, fmt.Errorf("%w: quantity %q is not a positive integer", ErrMetadataInvalid, raw[metaKeyQuantity])
		}
		meta.Quantity = quantity
	default:
		return CheckoutMetadata{}, fmt.Errorf("%w: unknown checkout type %q", ErrMetadataInvalid, raw[metaKeyKind])
	}

	return meta, nil
}

func parseMetaUUID(raw map[string]string, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw[key])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a uuid", ErrMetadataInvalid, key, raw[key])
	}
	return id, nil
}

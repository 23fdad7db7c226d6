package payments

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParseMetadataCartRoundTrip(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	cartID := uuid.New()

	meta, err := ParseMetadata(NewCartMetadata(userID, addressID, cartID).Encode())
	if err != nil {
		t.Fatalf("ParseMetadata returned error: %v", err)
	}
	if meta.Kind != CheckoutKindCart {
		t.Fatalf("kind = %q, want %q", meta.Kind, CheckoutKindCart)
	}
	if meta.UserID != userID || meta.AddressID != addressID || meta.CartID != cartID {
		t.Fatalf("unexpected decoded metadata: %+v", meta)
	}
}

func TestParseMetadataBuyNowRoundTrip(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	productID := uuid.New()

	meta, err := ParseMetadata(NewBuyNowMetadata(userID, addressID, productID, 2).Encode())
	if err != nil {
		t.Fatalf("ParseMetadata returned error: %v", err)
	}
	if meta.Kind != CheckoutKindBuyNow {
		t.Fatalf("kind = %q, want %q", meta.Kind, CheckoutKindBuyNow)
	}
	if meta.ProductID != productID || meta.Quantity != 2 {
		t.Fatalf("unexpected decoded metadata: %+v", meta)
	}
}

func TestParseMetadataMissingTypeMeansCart(t *testing.T) {
	raw := NewCartMetadata(uuid.New(), uuid.New(), uuid.New()).Encode()
	delete(raw, "type")

	meta, err := ParseMetadata(raw)
	if err != nil {
		t.Fatalf("ParseMetadata returned error: %v", err)
	}
	if meta.Kind != CheckoutKindCart {
		t.Fatalf("kind = %q, want %q", meta.Kind, CheckoutKindCart)
	}
}

func TestParseMetadataRejectsBadPayloads(t *testing.T) {
	valid := func() map[string]string {
		return NewBuyNowMetadata(uuid.New(), uuid.New(), uuid.New(), 3).Encode()
	}

	cases := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing version", func(m map[string]string) { delete(m, "v") }},
		{"future version", func(m map[string]string) { m["v"] = "2" }},
		{"bad user id", func(m map[string]string) { m["userId"] = "not-a-uuid" }},
		{"missing address id", func(m map[string]string) { delete(m, "addressId") }},
		{"bad product id", func(m map[string]string) { m["productId"] = "42" }},
		{"unknown type", func(m map[string]string) { m["type"] = "subscription" }},
		{"quantity not numeric", func(m map[string]string) { m["quantity"] = "two" }},
		{"quantity zero", func(m map[string]string) { m["quantity"] = "0" }},
		{"quantity negative", func(m map[string]string) { m["quantity"] = "-1" }},
		{"quantity missing", func(m map[string]string) { delete(m, "quantity") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := valid()
			tc.mutate(raw)
			if _, err := ParseMetadata(raw); !errors.Is(err, ErrMetadataInvalid) {
				t.Fatalf("ParseMetadata error = %v, want ErrMetadataInvalid", err)
			}
		})
	}
}

func TestParseMetadataCartRequiresCartID(t *testing.T) {
	raw := NewCartMetadata(uuid.New(), uuid.New(), uuid.New()).Encode()
	delete(raw, "cartId")

	if _, err := ParseMetadata(raw); !errors.Is(err, ErrMetadataInvalid) {
		t.Fatalf("ParseMetadata error = %v, want ErrMetadataInvalid", err)
	}
}

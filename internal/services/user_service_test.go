package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
)

func newUserFixture(t *testing.T) (*memRegistry, UserService) {
	t.Helper()
	registry := newMemRegistry()
	service, err := NewUserService(UserServiceDeps{Registry: registry})
	if err != nil {
		t.Fatalf("NewUserService returned error: %v", err)
	}
	return registry, service
}

func validAddressInput() AddressInput {
	return AddressInput{
		Recipient:  "Jesús",
		Line1:      "Av. Reforma 1",
		City:       "CDMX",
		PostalCode: "06600",
		Country:    "mx",
	}
}

func defaultCount(t *testing.T, registry *memRegistry, userID uuid.UUID) (int, uuid.UUID) {
	t.Helper()
	count := 0
	var id uuid.UUID
	for _, a := range registry.addresses {
		if a.UserID == userID && a.IsDefault {
			count++
			id = a.ID
		}
	}
	return count, id
}

func TestCreateAddressFirstBecomesDefault(t *testing.T) {
	_, service := newUserFixture(t)
	userID := uuid.New()

	created, err := service.CreateAddress(context.Background(), userID, validAddressInput())
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}
	if !created.IsDefault {
		t.Fatal("first address must become default")
	}
	if created.Country != "MX" {
		t.Fatalf("country = %q, want MX", created.Country)
	}
}

func TestCreateAddressDefaultDemotesPrevious(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()

	first, err := service.CreateAddress(context.Background(), userID, validAddressInput())
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	input := validAddressInput()
	input.IsDefault = true
	second, err := service.CreateAddress(context.Background(), userID, input)
	if err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	count, defaultID := defaultCount(t, registry, userID)
	if count != 1 {
		t.Fatalf("defaults = %d, want exactly 1", count)
	}
	if defaultID != second.ID {
		t.Fatalf("default = %s, want the new address %s (was %s)", defaultID, second.ID, first.ID)
	}
}

func TestCreateAddressNonDefaultKeepsExistingDefault(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()

	first, _ := service.CreateAddress(context.Background(), userID, validAddressInput())
	if _, err := service.CreateAddress(context.Background(), userID, validAddressInput()); err != nil {
		t.Fatalf("CreateAddress returned error: %v", err)
	}

	count, defaultID := defaultCount(t, registry, userID)
	if count != 1 || defaultID != first.ID {
		t.Fatalf("default = %s (count %d), want %s", defaultID, count, first.ID)
	}
}

func TestSetDefaultAddressMovesDefault(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()

	service.CreateAddress(context.Background(), userID, validAddressInput())
	second, _ := service.CreateAddress(context.Background(), userID, validAddressInput())

	if err := service.SetDefaultAddress(context.Background(), userID, second.ID); err != nil {
		t.Fatalf("SetDefaultAddress returned error: %v", err)
	}

	count, defaultID := defaultCount(t, registry, userID)
	if count != 1 || defaultID != second.ID {
		t.Fatalf("default = %s (count %d), want %s", defaultID, count, second.ID)
	}
}

func TestSetDefaultAddressForeignAddress(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()
	foreign := registry.addAddress(domain.Address{UserID: uuid.New(), Recipient: "O", Line1: "L", City: "C", PostalCode: "0", Country: "MX"})

	err := service.SetDefaultAddress(context.Background(), userID, foreign.ID)
	if !errors.Is(err, ErrUserAddressNotFound) {
		t.Fatalf("error = %v, want ErrUserAddressNotFound", err)
	}
}

func TestDeleteDefaultAddressPromotesOldestRemaining(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()

	first, _ := service.CreateAddress(context.Background(), userID, validAddressInput())
	second, _ := service.CreateAddress(context.Background(), userID, validAddressInput())

	if err := service.DeleteAddress(context.Background(), userID, first.ID); err != nil {
		t.Fatalf("DeleteAddress returned error: %v", err)
	}

	count, defaultID := defaultCount(t, registry, userID)
	if count != 1 || defaultID != second.ID {
		t.Fatalf("default = %s (count %d), want %s", defaultID, count, second.ID)
	}
}

func TestDeleteLastAddressLeavesNoDefault(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()

	only, _ := service.CreateAddress(context.Background(), userID, validAddressInput())
	if err := service.DeleteAddress(context.Background(), userID, only.ID); err != nil {
		t.Fatalf("DeleteAddress returned error: %v", err)
	}

	if count, _ := defaultCount(t, registry, userID); count != 0 {
		t.Fatalf("defaults = %d, want 0", count)
	}
}

func TestUpdateAddressDemotingDefaultPromotesSuccessor(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()

	first, _ := service.CreateAddress(context.Background(), userID, validAddressInput())
	second, _ := service.CreateAddress(context.Background(), userID, validAddressInput())

	input := validAddressInput()
	input.IsDefault = false
	if _, err := service.UpdateAddress(context.Background(), userID, first.ID, input); err != nil {
		t.Fatalf("UpdateAddress returned error: %v", err)
	}

	count, defaultID := defaultCount(t, registry, userID)
	if count != 1 || defaultID != second.ID {
		t.Fatalf("default = %s (count %d), want %s", defaultID, count, second.ID)
	}
}

func TestUpdateSoleAddressCannotDropDefault(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()

	only, _ := service.CreateAddress(context.Background(), userID, validAddressInput())

	input := validAddressInput()
	input.IsDefault = false
	updated, err := service.UpdateAddress(context.Background(), userID, only.ID, input)
	if err != nil {
		t.Fatalf("UpdateAddress returned error: %v", err)
	}
	if !updated.IsDefault {
		t.Fatal("sole address must stay default")
	}
	if count, _ := defaultCount(t, registry, userID); count != 1 {
		t.Fatalf("defaults = %d, want 1", count)
	}
}

func TestCreateAddressRejectsInvalidInput(t *testing.T) {
	_, service := newUserFixture(t)

	input := validAddressInput()
	input.Country = "MEX"
	if _, err := service.CreateAddress(context.Background(), uuid.New(), input); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("error = %v, want ErrUserInvalidInput", err)
	}
}

func TestFavoriteLifecycle(t *testing.T) {
	registry, service := newUserFixture(t)
	userID := uuid.New()
	product := registry.addProduct(domain.Product{Name: "Camisa", Price: decimal.NewFromInt(100)})

	if err := service.AddFavorite(context.Background(), userID, product.ID); err != nil {
		t.Fatalf("AddFavorite returned error: %v", err)
	}
	// Saving twice is a no-op.
	if err := service.AddFavorite(context.Background(), userID, product.ID); err != nil {
		t.Fatalf("second AddFavorite returned error: %v", err)
	}

	favorites, err := service.ListFavorites(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListFavorites returned error: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("favorites = %d, want 1", len(favorites))
	}

	if err := service.RemoveFavorite(context.Background(), userID, product.ID); err != nil {
		t.Fatalf("RemoveFavorite returned error: %v", err)
	}
	favorites, _ = service.ListFavorites(context.Background(), userID)
	if len(favorites) != 0 {
		t.Fatalf("favorites = %d, want 0", len(favorites))
	}
}

func TestAddFavoriteUnknownProduct(t *testing.T) {
	_, service := newUserFixture(t)
	err := service.AddFavorite(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrUserProductNotFound) {
		t.Fatalf("error = %v, want ErrUserProductNotFound", err)
	}
}

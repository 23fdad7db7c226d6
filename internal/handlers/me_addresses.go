package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/auth"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/httpx"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

const maxAddressBodySize = 8 * 1024

// MeHandlers exposes profile-scoped endpoints: addresses and favorites.
type MeHandlers struct {
	authn *auth.Authenticator
	users services.UserService
}

// NewMeHandlers constructs the authenticated profile handlers.
func NewMeHandlers(authn *auth.Authenticator, users services.UserService) *MeHandlers {
	return &MeHandlers{authn: authn, users: users}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/addresses", h.listAddresses)
	r.Post("/addresses", h.createAddress)
	r.Put("/addresses/{addressId}", h.updateAddress)
	r.Delete("/addresses/{addressId}", h.deleteAddress)
	r.Post("/addresses/{addressId}/default", h.setDefaultAddress)

	r.Get("/favorites", h.listFavorites)
	r.Put("/favorites/{productId}", h.addFavorite)
	r.Delete("/favorites/{productId}", h.removeFavorite)
}

type addressPayload struct {
	ID         string  `json:"id"`
	Recipient  string  `json:"recipient"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      *string `json:"state,omitempty"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
	IsDefault  bool    `json:"isDefault"`
}

func buildAddressPayload(address domain.Address) addressPayload {
	return addressPayload{
		ID:         address.ID.String(),
		Recipient:  address.Recipient,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
		Phone:      address.Phone,
		IsDefault:  address.IsDefault,
	}
}

type addressRequest struct {
	Recipient  string  `json:"recipient"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2"`
	City       string  `json:"city"`
	State      *string `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone"`
	IsDefault  bool    `json:"isDefault"`
}

func (req addressRequest) toInput() services.AddressInput {
	return services.AddressInput{
		Recipient:  req.Recipient,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault,
	}
}

func (h *MeHandlers) listAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	addresses, err := h.users.ListAddresses(ctx, identity.UserID)
	if err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	payload := make([]addressPayload, 0, len(addresses))
	for _, address := range addresses {
		payload = append(payload, buildAddressPayload(address))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"addresses": payload})
}

func (h *MeHandlers) createAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	req, ok := h.decodeAddress(ctx, w, r)
	if !ok {
		return
	}
	address, err := h.users.CreateAddress(ctx, identity.UserID, req.toInput())
	if err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"address": buildAddressPayload(address)})
}

func (h *MeHandlers) updateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	addressID, ok := h.addressParam(ctx, w, r)
	if !ok {
		return
	}

	req, ok := h.decodeAddress(ctx, w, r)
	if !ok {
		return
	}
	address, err := h.users.UpdateAddress(ctx, identity.UserID, addressID, req.toInput())
	if err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"address": buildAddressPayload(address)})
}

func (h *MeHandlers) deleteAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	addressID, ok := h.addressParam(ctx, w, r)
	if !ok {
		return
	}

	if err := h.users.DeleteAddress(ctx, identity.UserID, addressID); err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MeHandlers) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	addressID, ok := h.addressParam(ctx, w, r)
	if !ok {
		return
	}

	if err := h.users.SetDefaultAddress(ctx, identity.UserID, addressID); err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MeHandlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	favorites, err := h.users.ListFavorites(ctx, identity.UserID)
	if err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	payload := make([]productPayload, 0, len(favorites))
	for _, favorite := range favorites {
		payload = append(payload, buildProductPayload(favorite.Product))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"favorites": payload})
}

func (h *MeHandlers) addFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId must be a uuid", http.StatusBadRequest))
		return
	}

	if err := h.users.AddFavorite(ctx, identity.UserID, productID); err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MeHandlers) removeFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId must be a uuid", http.StatusBadRequest))
		return
	}

	if err := h.users.RemoveFavorite(ctx, identity.UserID, productID); err != nil {
		h.writeUserError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MeHandlers) decodeAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) (addressRequest, bool) {
	var req addressRequest
	body, err := readLimitedBody(r, maxAddressBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return req, false
	}
	return req, true
}

func (h *MeHandlers) addressParam(ctx context.Context, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	addressID, err := uuid.Parse(chi.URLParam(r, "addressId"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "addressId must be a uuid", http.StatusBadRequest))
		return uuid.Nil, false
	}
	return addressID, true
}

func (h *MeHandlers) writeUserError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrUserAddressNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("address_not_found", "address not found", http.StatusNotFound))
	case errors.Is(err, services.ErrUserProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("profile_service_unavailable", "profile service is unavailable", http.StatusServiceUnavailable))
	}
}

package controllers

import (
	"net/http"
	"strings"

	"candle-shop/middleware"
	"candle-shop/models"

	"github.com/sirupsen/logrus"
)

// AddressController handles the caller's shipping addresses
type AddressController struct {
	Accounts AccountStore
}

// NewAddressController creates a new AddressController
func NewAddressController(accounts AccountStore) *AddressController {
	return &AddressController{Accounts: accounts}
}

// GetAddresses lists the caller's addresses
func (ac *AddressController) GetAddresses(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	addresses, err := ac.Accounts.ListAddresses(ctx, id.AccountID)
	if err != nil {
		writeStoreError(w, r, err, "Account not found")
		return
	}
	writeJSON(w, addresses)
}

// AddAddress stores a new address. The first address of an account always
// becomes its default.
func (ac *AddressController) AddAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var address models.Address
	if err := decodeJSON(w, r, &address); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	address.AddressLine = strings.TrimSpace(address.AddressLine)
	address.City = strings.TrimSpace(address.City)
	if err := validate.Struct(address); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	created, err := ac.Accounts.AddAddress(ctx, id.AccountID, address)
	if err != nil {
		writeStoreError(w, r, err, "Account not found")
		return
	}

	middleware.Logger(r.Context()).WithFields(logrus.Fields{
		"account_id": id.AccountID,
		"address_id": created.ID,
		"is_default": created.IsDefault,
	}).Info("address added")
	writeJSON(w, created)
}

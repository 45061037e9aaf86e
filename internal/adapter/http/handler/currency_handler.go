package handler

import (
	"net/http"

	"github.com/iho/cashstock/internal/adapter/http/dto"
	"github.com/iho/cashstock/internal/domain"
)

// CurrencyHandler serves the static currency catalog.
type CurrencyHandler struct{}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler() *CurrencyHandler {
	return &CurrencyHandler{}
}

// List returns the supported currencies and their denominations.
func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.CurrenciesFromDomain(domain.Currencies()))
}

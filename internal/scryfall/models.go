package scryfall

import (
	"errors"
	"fmt"
)

// Card is a single printing of a Magic card as returned by Scryfall. Only
// the fields the league cares about are mapped; price selection and deck
// pricing need little beyond name, set and prices.
type Card struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Lang        string     `json:"lang"`
	SetCode     string     `json:"set"`
	SetName     string     `json:"set_name"`
	Rarity      string     `json:"rarity"`
	Digital     bool       `json:"digital"`
	ScryfallURI string     `json:"scryfall_uri"`
	ImageURIs   *ImageURIs `json:"image_uris,omitempty"`
	Prices      Prices     `json:"prices"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

// Prices holds per-currency, per-finish price fields. Any of them may be
// absent or null for a given printing.
type Prices struct {
	USD     *string `json:"usd,omitempty"`
	USDFoil *string `json:"usd_foil,omitempty"`
	EUR     *string `json:"eur,omitempty"`
	EURFoil *string `json:"eur_foil,omitempty"`
	TIX     *string `json:"tix,omitempty"`
}

// SearchResult is a page of printings from the search endpoint.
type SearchResult struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
	Data       []Card `json:"data"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

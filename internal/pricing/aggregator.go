// Package pricing turns a parsed card list into a priced deck snapshot by
// driving the catalog client card by card.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/rookenthusiast/mtg-commander-league/internal/scryfall"
)

// Currency is the league's reporting currency. USD prices are used as-is
// when no EUR price exists; there is no conversion step.
const Currency = "EUR"

// CardLookup is the part of the catalog client the aggregator needs.
type CardLookup interface {
	FetchCheapestPrinting(ctx context.Context, cardName string, preferFoil bool) (*scryfall.Card, error)
}

// Entry is one card to price.
type Entry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	IsFoil   bool   `json:"isFoil"`
}

// CardPrice is a priced line item inside a deck snapshot.
type CardPrice struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
	LineTotal float64 `json:"total"`
	SetCode   string  `json:"set"`
	IsFoil    bool    `json:"isFoil"`
}

// DeckPriceData is a complete priced snapshot payload for one decklist.
type DeckPriceData struct {
	DeckName     string      `json:"deckName"`
	TotalPrice   float64     `json:"totalPrice"`
	Currency     string      `json:"currency"`
	CardCount    int         `json:"cardCount"`
	Cards        []CardPrice `json:"cards"`
	DecklistText string      `json:"decklistText"`
}

// Aggregator prices decks against a card catalog.
type Aggregator struct {
	catalog CardLookup
	logger  *slog.Logger
}

// NewAggregator creates an aggregator over the given catalog client.
func NewAggregator(catalog CardLookup, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{catalog: catalog, logger: logger}
}

// CalculateDeckPrice looks up every entry in order and sums line totals into
// a deck total. A card the catalog cannot price becomes a zero-price line
// rather than failing the deck; only a catalog rate-limit aborts the batch.
func (a *Aggregator) CalculateDeckPrice(ctx context.Context, deckName, decklistText string, entries []Entry) (*DeckPriceData, error) {
	a.logger.Info("calculating deck price", "deck", deckName, "entries", len(entries))

	cards := make([]CardPrice, 0, len(entries))
	total := 0.0
	cardCount := 0

	for _, entry := range entries {
		cardCount += entry.Quantity

		card, err := a.catalog.FetchCheapestPrinting(ctx, entry.Name, entry.IsFoil)
		if err != nil {
			if errors.Is(err, scryfall.ErrRateLimited) {
				return nil, fmt.Errorf("pricing %q: %w", entry.Name, err)
			}
			// Lookup failures degrade to a zero-price line.
			a.logger.Warn("card lookup failed", "card", entry.Name, "error", err)
			card = nil
		}

		line := priceLine(card, entry)
		cards = append(cards, line)
		total += line.LineTotal
	}

	return &DeckPriceData{
		DeckName:     deckName,
		TotalPrice:   round2(total),
		Currency:     Currency,
		CardCount:    cardCount,
		Cards:        cards,
		DecklistText: decklistText,
	}, nil
}

// priceLine converts a catalog printing into a priced line item.
func priceLine(card *scryfall.Card, entry Entry) CardPrice {
	line := CardPrice{
		Name:     entry.Name,
		Quantity: entry.Quantity,
		SetCode:  "unknown",
		IsFoil:   entry.IsFoil,
	}

	if card == nil {
		return line
	}

	line.Name = card.Name
	line.SetCode = card.SetCode

	if unit, _, ok := scryfall.EffectivePrice(card.Prices, entry.IsFoil); ok {
		line.UnitPrice = round2(unit)
		line.LineTotal = round2(line.UnitPrice * float64(entry.Quantity))
	}

	return line
}

// round2 rounds to the cent, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

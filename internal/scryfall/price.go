package scryfall

import "strconv"

// PriceSource names which price field was selected for a printing.
type PriceSource string

const (
	PriceSourceEUR     PriceSource = "EUR"
	PriceSourceUSD     PriceSource = "USD"
	PriceSourceEURFoil PriceSource = "EUR_foil"
	PriceSourceUSDFoil PriceSource = "USD_foil"
)

// EffectivePrice selects a usable price from a printing's price set.
//
// Preference order is EUR non-foil, USD non-foil, EUR foil, USD foil; with
// preferFoil the foil prices are tried first. Missing, zero and non-numeric
// prices are skipped. Returns ok=false when the printing has no usable price.
func EffectivePrice(prices Prices, preferFoil bool) (price float64, source PriceSource, ok bool) {
	type candidate struct {
		value  *string
		source PriceSource
	}

	var cascade []candidate
	if preferFoil {
		cascade = []candidate{
			{prices.EURFoil, PriceSourceEURFoil},
			{prices.USDFoil, PriceSourceUSDFoil},
			{prices.EUR, PriceSourceEUR},
			{prices.USD, PriceSourceUSD},
		}
	} else {
		cascade = []candidate{
			{prices.EUR, PriceSourceEUR},
			{prices.USD, PriceSourceUSD},
			{prices.EURFoil, PriceSourceEURFoil},
			{prices.USDFoil, PriceSourceUSDFoil},
		}
	}

	for _, c := range cascade {
		if c.value == nil || *c.value == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(*c.value, 64)
		if err != nil || parsed <= 0 {
			continue
		}
		return parsed, c.source, true
	}

	return 0, "", false
}

// CheapestPrinting returns the printing with the lowest effective price
// under the given finish preference. Printings without a usable price are
// excluded; nil when none of the printings has one.
func CheapestPrinting(printings []Card, preferFoil bool) *Card {
	var cheapest *Card
	var cheapestPrice float64

	for i := range printings {
		price, _, ok := EffectivePrice(printings[i].Prices, preferFoil)
		if !ok {
			continue
		}
		if cheapest == nil || price < cheapestPrice {
			cheapest = &printings[i]
			cheapestPrice = price
		}
	}

	return cheapest
}

// Package decklist parses text-based decklists from the formats players
// typically paste in: Moxfield, MTGGoldfish, Archidekt and Arena exports, or
// a plain "1 Card Name" list.
package decklist

import (
	"regexp"
	"strconv"
	"strings"
)

// Section identifies which part of the deck a parsed card belongs to.
type Section string

const (
	SectionCommander Section = "commander"
	SectionMainboard Section = "mainboard"
	SectionSideboard Section = "sideboard"
)

// DefaultDeckName is used when no deck name can be extracted from the text.
const DefaultDeckName = "Imported Deck"

// minCardNameLength filters out single-character noise lines.
const minCardNameLength = 2

// deckNameScanLines limits how far ExtractDeckName looks before giving up.
const deckNameScanLines = 6

// ParsedCard is a single entry from a decklist.
type ParsedCard struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	IsFoil   bool    `json:"isFoil"`
	Section  Section `json:"section"`
}

// ParsedDecklist is the result of parsing a decklist.
type ParsedDecklist struct {
	Cards      []ParsedCard `json:"cards"`
	TotalCards int          `json:"totalCards"`
	Commanders []ParsedCard `json:"commanders"`
	Mainboard  []ParsedCard `json:"mainboard"`
	Sideboard  []ParsedCard `json:"sideboard"`
}

// cardLineRe matches "1 Sol Ring" and "2x Island".
var cardLineRe = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)

// deckNameRe matches "Deck: Name" and "Name: Name" prefixes.
var deckNameRe = regexp.MustCompile(`(?i)^(?:deck|name):\s*(.+)$`)

// commentNameRe captures the text of a "// Name" comment line.
var commentNameRe = regexp.MustCompile(`^//\s*(.+)$`)

// quantityPrefixRe detects lines that look like card entries.
var quantityPrefixRe = regexp.MustCompile(`^\d+x?\s`)

// Parse turns raw decklist text into a structured card list. It never fails:
// degenerate input yields an empty list, which Validate rejects downstream.
func Parse(text string) *ParsedDecklist {
	parsed := &ParsedDecklist{
		Cards:      []ParsedCard{},
		Commanders: []ParsedCard{},
		Mainboard:  []ParsedCard{},
		Sideboard:  []ParsedCard{},
	}

	currentSection := SectionMainboard

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Comment lines act as section headers in most export formats.
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			lower := strings.ToLower(trimmed)
			switch {
			case strings.Contains(lower, "commander"):
				currentSection = SectionCommander
			case strings.Contains(lower, "deck"), strings.Contains(lower, "main"):
				currentSection = SectionMainboard
			case strings.Contains(lower, "sideboard"):
				currentSection = SectionSideboard
			}
			continue
		}

		quantity := 1
		cardName := trimmed

		if m := cardLineRe.FindStringSubmatch(trimmed); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				quantity = n
			}
			cardName = strings.TrimSpace(m[2])
		}

		if len(cardName) < minCardNameLength {
			continue
		}

		card := ParsedCard{
			Name:     cardName,
			Quantity: quantity,
			Section:  currentSection,
		}

		parsed.Cards = append(parsed.Cards, card)
		parsed.TotalCards += quantity

		switch currentSection {
		case SectionCommander:
			parsed.Commanders = append(parsed.Commanders, card)
		case SectionSideboard:
			parsed.Sideboard = append(parsed.Sideboard, card)
		default:
			parsed.Mainboard = append(parsed.Mainboard, card)
		}
	}

	return parsed
}

// Validate checks that a parsed decklist contains at least one card.
func Validate(parsed *ParsedDecklist) error {
	if len(parsed.Cards) == 0 || parsed.TotalCards == 0 {
		return ErrEmptyDecklist
	}
	return nil
}

// ExtractDeckName scans the first few non-empty lines for something that
// looks like a deck name: a "Deck:"/"Name:" prefix, a short comment, or a
// short line that isn't a card entry. Falls back to DefaultDeckName.
func ExtractDeckName(text string) string {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := deckNameRe.FindStringSubmatch(trimmed); m != nil {
			return strings.TrimSpace(m[1])
		}

		if m := commentNameRe.FindStringSubmatch(trimmed); m != nil {
			name := strings.TrimSpace(m[1])
			if len(name) < 50 && !strings.Contains(strings.ToLower(name), "commander") {
				return name
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		if len(trimmed) < 50 && !quantityPrefixRe.MatchString(trimmed) {
			return trimmed
		}

		if i > deckNameScanLines {
			break
		}
	}

	return DefaultDeckName
}

// CommanderName returns the first commander-section card, falling back to the
// first mainboard card. Empty string when the list has neither.
func CommanderName(parsed *ParsedDecklist) string {
	if len(parsed.Commanders) > 0 {
		return parsed.Commanders[0].Name
	}
	if len(parsed.Mainboard) > 0 {
		return parsed.Mainboard[0].Name
	}
	return ""
}

// DetectColors guesses a color identity from card names. It only recognizes
// basic lands and literal color words; accurate identity needs a catalog
// lookup, which callers do separately.
func DetectColors(cardNames []string) []string {
	hints := map[string][]string{
		"white": {"plains", "white"},
		"blue":  {"island", "blue"},
		"black": {"swamp", "black"},
		"red":   {"mountain", "red"},
		"green": {"forest", "green"},
	}
	order := []string{"white", "blue", "black", "red", "green"}

	seen := map[string]bool{}
	for _, name := range cardNames {
		lower := strings.ToLower(name)
		for color, words := range hints {
			for _, w := range words {
				if strings.Contains(lower, w) {
					seen[color] = true
				}
			}
		}
	}

	colors := []string{}
	for _, color := range order {
		if seen[color] {
			colors = append(colors, color)
		}
	}
	return colors
}

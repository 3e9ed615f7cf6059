package decklist

import "errors"

// ErrEmptyDecklist is returned by Validate when parsing produced no cards.
var ErrEmptyDecklist = errors.New("no cards found in decklist")

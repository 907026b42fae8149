// Package intent maps raw post text to a structured action intent. Extraction
// is pure: no I/O, no stored state, and the same text always yields the same
// intent for a given reference time.
package intent

import (
	"time"
)

// Kind identifies the action a post's text is asking for.
type Kind string

const (
	KindNone           Kind = "none"
	KindCreateToken    Kind = "create_token"
	KindSwap           Kind = "swap"
	KindCreateGiveaway Kind = "create_giveaway"
	KindDrawGiveaway   Kind = "draw_giveaway"
)

// Intent is the structured result of classifying one post's text.
// Exactly one of the parameter structs is populated, matching Kind.
type Intent struct {
	Kind Kind

	Giveaway *GiveawayParams
	Token    *TokenParams
	Swap     *SwapParams

	// Contracts lists every base58 address candidate found in the text, in
	// order of appearance. Consumers take the first.
	Contracts []string
}

// GiveawayParams are the fields extracted for a create-giveaway intent.
type GiveawayParams struct {
	ParticipantCount int
	Amount           float64
	TokenType        string
	Deadline         *time.Time
}

// TokenParams are the fields extracted for a create-token intent. A field the
// text did not provide is left as its zero value; the executor decides which
// ones it can live without.
type TokenParams struct {
	Name             string
	Description      string
	Website          string
	Telegram         string
	ImageURL         string
	InitialLiquidity float64
}

// SwapParams are the fields extracted for a swap/transfer intent.
type SwapParams struct {
	FromToken string
	ToToken   string
	Amount    float64
	Recipient string // base58 address when the text names one
}

package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// MaxSwapAmount bounds how large an extracted transfer amount may be. Numbers
// above it are almost certainly IDs or engagement counts, not amounts.
const MaxSwapAmount = 1000

var (
	giveawayRe = regexp.MustCompile(`(?i)\b(?:create|start|launch|make|run|do)\s+(?:a\s+|an\s+|the\s+)?(?:giveaway|gw|campaign|contest|prize|draw)\b`)
	drawRe     = regexp.MustCompile(`(?i)\b(?:draw|pick|choose|select)\b[^.!?\n]*\b(?:winners?|giveaway|gw)\b`)
	tokenRe    = regexp.MustCompile(`(?i)create a token`)
	swapWordRe = regexp.MustCompile(`(?i)\b(?:swap|swapped|send|sending|transfer|transferred)\b`)

	// Token markers: known symbols or a base58-looking contract address.
	// Candidate addresses still have to decode to 32 bytes before they count.
	base58Re      = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`)
	symbolRe      = regexp.MustCompile(`(?i)\b(sol|usdc|usdt|bonk|jito)\b`)
	amountTokenRe = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*((?i:sol|usdc|usdt|bonk|jito)|[1-9A-HJ-NP-Za-km-z]{32,44})\b`)

	participantNounRe = regexp.MustCompile(`(?i)\b(\d+)\s*(?:people|guys|users|participants|members|winners|folks)\b`)
	decimalRe         = regexp.MustCompile(`\b\d+\.\d+\b`)
	bareIntRe         = regexp.MustCompile(`\b\d+\b`)

	// Shorthand durations ("in 4min", "in 2h") that natural-language date
	// parsing does not reliably cover.
	durationRe = regexp.MustCompile(`(?i)\bin\s*(\d+)\s*(s|secs?|seconds?|m|mins?|minutes?|h|hrs?|hours?|d|days?)\b`)

	// "to <address>" marks a transfer recipient rather than a swap target.
	toAddrRe = regexp.MustCompile(`(?i)\bto\s+([1-9A-HJ-NP-Za-km-z]{32,44})\b`)

	quotedFieldRes = map[string]*regexp.Regexp{
		"name":        regexp.MustCompile(`(?i)\bname\s*[:=]\s*"([^"]+)"`),
		"description": regexp.MustCompile(`(?i)\bdescription\s*[:=]\s*"([^"]+)"`),
		"website":     regexp.MustCompile(`(?i)\bwebsite\s*[:=]\s*"([^"]+)"`),
		"telegram":    regexp.MustCompile(`(?i)\btelegram\s*[:=]\s*"([^"]+)"`),
	}
	liquidityRe = regexp.MustCompile(`(?i)\binitial\s+liquidity\s*[:=]\s*"?(\d+(?:\.\d+)?)"?`)
	imageLinkRe = regexp.MustCompile(`(?i)\bimage\s*link\s*:\s*(https?://\S+)`)
)

// cardinalNounRe catches spelled-out counts only when they sit next to a
// participant noun ("a giveaway for two people"). A cardinal on its own is
// ignored; "one hour" is a duration, not a count.
var cardinalNounRe = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|ten|twelve|fifteen|twenty|fifty|hundred)\s+(?:people|guys|users|participants|members|winners|folks)\b`)

var cardinalValues = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"twelve": 12, "fifteen": 15, "twenty": 20, "fifty": 50, "hundred": 100,
}

// Extractor classifies post text with an explicit ordered rule list,
// first match wins.
type Extractor struct {
	dates *when.Parser
}

// NewExtractor creates an extractor with English natural-date rules loaded.
func NewExtractor() *Extractor {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Extractor{dates: w}
}

// Extract classifies text using the current time as the reference for
// relative deadlines.
func (e *Extractor) Extract(text string) Intent {
	return e.ExtractAt(text, time.Now())
}

// ExtractAt classifies text against a fixed reference time. The result is a
// pure function of (text, ref), so a post can be safely re-evaluated after a
// crash and rules can be tested in isolation.
func (e *Extractor) ExtractAt(text string, ref time.Time) Intent {
	contracts := findContracts(text)

	for _, rule := range []func(string, time.Time, []string) (Intent, bool){
		e.matchCreateGiveaway,
		e.matchDrawGiveaway,
		e.matchCreateToken,
		e.matchSwap,
	} {
		if in, ok := rule(text, ref, contracts); ok {
			return in
		}
	}

	return Intent{Kind: KindNone, Contracts: contracts}
}

// matchCreateGiveaway handles "create a giveaway/gw/campaign/contest/prize/draw"
// phrasings: participant count, optional deadline, and an amount+token pair.
func (e *Extractor) matchCreateGiveaway(text string, ref time.Time, contracts []string) (Intent, bool) {
	if !giveawayRe.MatchString(text) {
		return Intent{}, false
	}

	params := &GiveawayParams{
		ParticipantCount: extractParticipantCount(text),
		Deadline:         e.extractDeadline(text, ref),
	}
	params.Amount, params.TokenType = extractAmountToken(text)

	return Intent{Kind: KindCreateGiveaway, Giveaway: params, Contracts: contracts}, true
}

// matchDrawGiveaway handles explicit "draw the winners" style requests. The
// giveaway itself is resolved by the caller from the post's author.
func (e *Extractor) matchDrawGiveaway(text string, _ time.Time, contracts []string) (Intent, bool) {
	if !drawRe.MatchString(text) {
		return Intent{}, false
	}
	return Intent{Kind: KindDrawGiveaway, Contracts: contracts}, true
}

// matchCreateToken handles "create a token" posts with key = "value" fields.
// Missing fields stay zero-valued rather than failing the match.
func (e *Extractor) matchCreateToken(text string, _ time.Time, contracts []string) (Intent, bool) {
	if !tokenRe.MatchString(text) {
		return Intent{}, false
	}

	params := &TokenParams{}
	if m := quotedFieldRes["name"].FindStringSubmatch(text); m != nil {
		params.Name = m[1]
	}
	if m := quotedFieldRes["description"].FindStringSubmatch(text); m != nil {
		params.Description = m[1]
	}
	if m := quotedFieldRes["website"].FindStringSubmatch(text); m != nil {
		params.Website = m[1]
	}
	if m := quotedFieldRes["telegram"].FindStringSubmatch(text); m != nil {
		params.Telegram = m[1]
	}
	if m := liquidityRe.FindStringSubmatch(text); m != nil {
		params.InitialLiquidity, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := imageLinkRe.FindStringSubmatch(text); m != nil {
		params.ImageURL = strings.TrimRight(m[1], ".,;)")
	}

	return Intent{Kind: KindCreateToken, Token: params, Contracts: contracts}, true
}

// matchSwap requires a swap keyword plus a bounded amount adjacent to a
// recognized token marker. An amount never stands alone: it must sit inside
// the same amount+token match.
func (e *Extractor) matchSwap(text string, _ time.Time, contracts []string) (Intent, bool) {
	if !swapWordRe.MatchString(text) {
		return Intent{}, false
	}

	matches := amountTokenRe.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		amountStr := text[m[2]:m[3]]
		marker := text[m[4]:m[5]]

		amount, err := strconv.ParseFloat(amountStr, 64)
		if err != nil || amount < 0 || amount > MaxSwapAmount {
			continue
		}

		from, ok := normalizeMarker(marker)
		if !ok {
			continue
		}

		params := &SwapParams{FromToken: from, Amount: amount}

		// A transfer names a recipient wallet; otherwise the destination is
		// the next recognized symbol, falling back to the first contract
		// candidate that is not the source.
		if tm := toAddrRe.FindStringSubmatch(text); tm != nil && IsAddress(tm[1]) && tm[1] != from {
			params.Recipient = tm[1]
		} else {
			rest := text[m[1]:]
			if sm := symbolRe.FindString(rest); sm != "" {
				params.ToToken = strings.ToUpper(sm)
			} else {
				for _, addr := range contracts {
					if addr != from {
						params.ToToken = addr
						break
					}
				}
			}
		}

		return Intent{Kind: KindSwap, Swap: params, Contracts: contracts}, true
	}

	return Intent{}, false
}

// extractParticipantCount finds how many winners a giveaway asks for. A digit
// run next to a participant noun anchors the count, then a spelled cardinal
// next to such a noun, then the first bare integer once decimal amounts are
// masked out.
func extractParticipantCount(text string) int {
	if m := participantNounRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}

	if m := cardinalNounRe.FindStringSubmatch(text); m != nil {
		return cardinalValues[strings.ToLower(m[1])]
	}

	masked := decimalRe.ReplaceAllStringFunc(text, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
	if m := bareIntRe.FindString(masked); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}

	return 0
}

// extractAmountToken finds a decimal number immediately followed by a token
// symbol or contract address. When only a bare decimal is present the token
// defaults to SOL.
func extractAmountToken(text string) (float64, string) {
	for _, m := range amountTokenRe.FindAllStringSubmatch(text, -1) {
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if token, ok := normalizeMarker(m[2]); ok {
			return amount, token
		}
	}

	if m := decimalRe.FindString(text); m != "" {
		if amount, err := strconv.ParseFloat(m, 64); err == nil {
			return amount, "SOL"
		}
	}

	return 0, ""
}

// extractDeadline parses a deadline from the full text: natural-language
// dates first, then shorthand durations. Returns nil when the text names none.
func (e *Extractor) extractDeadline(text string, ref time.Time) *time.Time {
	if r, err := e.dates.Parse(text, ref); err == nil && r != nil {
		t := r.Time
		return &t
	}

	if m := durationRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var unit time.Duration
		switch strings.ToLower(m[2])[0] {
		case 's':
			unit = time.Second
		case 'm':
			unit = time.Minute
		case 'h':
			unit = time.Hour
		case 'd':
			unit = 24 * time.Hour
		}
		t := ref.Add(time.Duration(n) * unit)
		return &t
	}

	return nil
}

// normalizeMarker turns a matched token marker into a canonical token: known
// symbols are uppercased, address candidates must decode to 32 bytes.
func normalizeMarker(marker string) (string, bool) {
	if symbolRe.MatchString(marker) && len(marker) <= 4 {
		return strings.ToUpper(marker), true
	}
	if IsAddress(marker) {
		return marker, true
	}
	return "", false
}

// findContracts returns every valid base58 address in the text, in order.
func findContracts(text string) []string {
	var out []string
	for _, cand := range base58Re.FindAllString(text, -1) {
		if IsAddress(cand) {
			out = append(out, cand)
		}
	}
	return out
}

// IsAddress reports whether s decodes as a 32-byte base58 account address.
// Digit runs like post IDs pass the character-class check but decode short,
// so the decode is what actually gates.
func IsAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == 32
}

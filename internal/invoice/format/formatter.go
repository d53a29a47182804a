package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}-{SEQ6}"

var (
	ErrEmptyTemplate   = errors.New("invoice_number_template_empty")
	ErrInvalidSequence = errors.New("invoice_sequence_invalid")
	ErrUnresolvedToken = errors.New("invoice_number_token_unresolved")
)

// FormatInvoiceNumber renders template for a sequence value issued at
// issuedAt. Supported tokens:
//
//	{YYYY} {YY} {MM} {DD}  issue date parts
//	{FY}                   Indian financial year, e.g. 2025-26 (April to March)
//	{SEQ}                  raw sequence
//	{SEQn}                 sequence zero padded to n digits
//
// The result is deterministic for the same inputs.
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ErrEmptyTemplate
	}
	if seq <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSequence, seq)
	}

	out := strings.NewReplacer(
		"{YYYY}", issuedAt.Format("2006"),
		"{YY}", issuedAt.Format("06"),
		"{MM}", issuedAt.Format("01"),
		"{DD}", issuedAt.Format("02"),
		"{FY}", FinancialYear(issuedAt),
		"{SEQ}", strconv.FormatInt(seq, 10),
	).Replace(template)

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 || width > 18 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedToken, out)
	}
	return out, nil
}

// FinancialYear returns the April-March year label containing t.
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

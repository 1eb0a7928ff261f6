package payment

import (
	"strings"
	"unicode"

	d "github.com/fjod/go_restaurant/domain"
)

// StripCardNumber drops spaces, dashes and anything else that is not a digit.
func StripCardNumber(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups the digits in blocks of four for display.
func FormatCardNumber(number string) string {
	return group(StripCardNumber(number))
}

// MaskCardNumber hides all but the last four digits, grouped like FormatCardNumber.
func MaskCardNumber(number string) string {
	digits := StripCardNumber(number)
	if len(digits) <= 4 {
		return digits
	}
	return group(strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:])
}

func group(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Validate checks that every required card field is present. It is a fast
// local check only; the gateway does the real validation.
func Validate(card d.CardDetails) error {
	var missing []string
	if StripCardNumber(card.Number) == "" {
		missing = append(missing, "card number")
	}
	if strings.TrimSpace(card.ExpiryMonth) == "" {
		missing = append(missing, "expiry month")
	}
	if strings.TrimSpace(card.ExpiryYear) == "" {
		missing = append(missing, "expiry year")
	}
	if strings.TrimSpace(card.CVC) == "" {
		missing = append(missing, "CVC")
	}
	if strings.TrimSpace(card.HolderName) == "" {
		missing = append(missing, "card holder name")
	}
	if len(missing) > 0 {
		return d.NewError(d.KindValidation, op, "missing "+strings.Join(missing, ", "), nil)
	}
	return nil
}

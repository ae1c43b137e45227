package service

import "strings"

// Brazilian phone handling. Numbers arrive in many shapes — with or without
// the 55 country code, with or without the extra mobile "9" after the area
// code — so lookups always match against every plausible variant.
//
// Accepted digit lengths:
//   10  area code + 8-digit subscriber
//   11  area code + 9 + 8-digit subscriber
//   12  55 + area code + 8-digit subscriber
//   13  55 + area code + 9 + 8-digit subscriber

// NormalizePhone strips everything but digits.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneVariants returns every normalized Brazilian form of a phone number,
// the input form included. Unrecognized lengths return just the digits as-is.
func PhoneVariants(raw string) []string {
	digits := NormalizePhone(raw)

	var area, subscriber string
	switch len(digits) {
	case 10:
		area, subscriber = digits[:2], digits[2:]
	case 11:
		area, subscriber = digits[:2], digits[3:] // drop the mobile "9"
	case 12:
		area, subscriber = digits[2:4], digits[4:]
	case 13:
		area, subscriber = digits[2:4], digits[5:] // drop "55" and the "9"
	default:
		if digits == "" {
			return nil
		}
		return []string{digits}
	}

	variants := []string{
		area + subscriber,
		area + "9" + subscriber,
		"55" + area + subscriber,
		"55" + area + "9" + subscriber,
	}

	// Keep the raw digits first so exact matches win, then dedupe.
	out := make([]string, 0, len(variants)+1)
	seen := map[string]bool{}
	for _, v := range append([]string{digits}, variants...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

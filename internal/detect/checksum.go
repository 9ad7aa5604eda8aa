package detect

// luhnValid reports whether a digit string passes the Luhn checksum:
// double every second digit from the right, subtract 9 from doubles
// above 9, and require the total to be divisible by 10.
func luhnValid(digits string) bool {
	if len(digits) == 0 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	return sum%10 == 0
}

// ibanValid implements the ISO 7064 mod-97 check: move the first four
// characters to the end, map letters A-Z to 10-35, and reduce the
// resulting numeral string modulo 97. Valid IBANs reduce to 1.
func ibanValid(iban string) bool {
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}

	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			remainder = (remainder*100 + v) % 97
		default:
			return false
		}
	}

	return remainder == 1
}

// cardIssuer infers the card network from prefix and length. Unknown
// prefixes return an empty string; the finding is still reported.
func cardIssuer(digits string) string {
	n := len(digits)
	switch {
	case digits[0] == '4' && (n == 13 || n == 16 || n == 19):
		return "visa"
	case n == 16 && (between(digits[:2], "51", "55") || between(digits[:4], "2221", "2720")):
		return "mastercard"
	case n == 15 && (digits[:2] == "34" || digits[:2] == "37"):
		return "amex"
	case n >= 16 && n <= 19 && (digits[:4] == "6011" || digits[:2] == "65"):
		return "discover"
	case n == 14 && (between(digits[:3], "300", "305") || digits[:2] == "36" || digits[:2] == "38"):
		return "diners"
	case n >= 16 && n <= 19 && between(digits[:4], "3528", "3589"):
		return "jcb"
	}
	return ""
}

// between reports whether s sorts within [lo, hi] inclusive. All three
// strings must be equal-length digit prefixes.
func between(s, lo, hi string) bool {
	return s >= lo && s <= hi
}

package normalize

import "strings"

// uaeMobilePrefixes are the local Etisalat/du mobile prefixes.
var uaeMobilePrefixes = []string{"050", "052", "054", "055", "056", "058"}

// NormalizePhone applies an ordered set of prefix heuristics to turn a raw
// phone field into an E.164-ish international number. This is a best-effort
// transform, not a validator: when no rule produces a plausible result the
// original input is returned unchanged so downstream validation can decide.
//
// Rules, first match wins:
//
//	00963...            -> +963...
//	0963...             -> +963...
//	963...              -> +963...
//	09XXXXXXXX (10)     -> +9639XXXXXXXX   Syrian mobile
//	07XXXXXXXX (10)     -> +9627XXXXXXXX   Jordanian mobile
//	05XXXXXXXX (10)     -> +9665XXXXXXXX   Saudi mobile
//	05XXXXXXXX (UAE px) -> +9715XXXXXXXX   UAE mobile
//	7-10 digits         -> +963... / +96311...  assumed Syrian landline
func NormalizePhone(raw string) string {
	cleaned := stripPhone(raw)
	if cleaned == "" {
		return raw
	}

	normalized := applyPhoneRules(cleaned)

	// A plausible international number is +-prefixed and at least 10 chars.
	if len(normalized) < 10 || !strings.HasPrefix(normalized, "+") {
		return raw
	}
	return normalized
}

// stripPhone removes everything except digits and a leading plus.
func stripPhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func applyPhoneRules(p string) string {
	if strings.HasPrefix(p, "+") {
		return p
	}

	switch {
	case strings.HasPrefix(p, "00963"):
		return "+963" + p[5:]
	case strings.HasPrefix(p, "0963"):
		return "+963" + p[4:]
	case strings.HasPrefix(p, "963"):
		return "+" + p
	case strings.HasPrefix(p, "09") && len(p) == 10:
		return "+963" + p[1:]
	case strings.HasPrefix(p, "07") && len(p) == 10:
		return "+962" + p[1:]
	case strings.HasPrefix(p, "05") && len(p) == 10:
		if isUAEMobile(p) {
			return "+971" + p[1:]
		}
		return "+966" + p[1:]
	}

	// Assume a Syrian landline: short local numbers get the Damascus area code.
	if len(p) >= 7 && len(p) <= 10 {
		digits := strings.TrimPrefix(p, "0")
		if len(digits) == 7 {
			return "+96311" + digits
		}
		return "+963" + digits
	}

	return p
}

func isUAEMobile(p string) bool {
	for _, prefix := range uaeMobilePrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

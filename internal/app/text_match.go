package app

import "strings"

// normalizeText lower-cases, strips Arabic diacritics and folds variant
// letter forms so that spelling variants score as the same tokens.
func normalizeText(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		// Arabic diacritic marks (tashkeel range).
		if r >= 0x064B && r <= 0x065F {
			continue
		}
		switch r {
		case 'أ', 'إ', 'آ':
			b.WriteRune('ا')
		case 'ة':
			b.WriteRune('ه')
		case 'ى':
			b.WriteRune('ي')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenSet splits normalized text on whitespace into a set of tokens.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalizeText(text)) {
		set[tok] = struct{}{}
	}
	return set
}

// jaccardSimilarity computes |A∩B| / |A∪B| over two token sets, returning 0
// for an empty union.
func jaccardSimilarity(a, b map[string]struct{}) float64 {
	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

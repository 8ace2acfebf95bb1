package images

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// translit maps Ukrainian and Russian Cyrillic letters to Latin. Admin
// uploads arrive with Cyrillic file names, which are not valid storage keys.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "h", 'ґ': "g", 'д': "d", 'е': "e",
	'є': "ye", 'ж': "zh", 'з': "z", 'и': "y", 'і': "i", 'ї': "yi", 'й': "y",
	'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ь': "", 'ю': "yu", 'я': "ya", 'ъ': "",
	'ы': "y", 'э': "e",
}

// NormalizeKey converts an arbitrary file name into a safe storage key:
// Cyrillic is transliterated, diacritics are stripped, and everything outside
// [a-z0-9._-] collapses to a single dash.
func NormalizeKey(name string) string {
	name = strings.ToLower(name)

	var b strings.Builder
	for _, r := range name {
		if s, ok := translit[r]; ok {
			b.WriteString(s)
			continue
		}
		b.WriteRune(r)
	}

	// Decompose and drop combining marks: "é" -> "e".
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		b.String(),
	)
	if err != nil {
		stripped = b.String()
	}

	var key strings.Builder
	lastDash := false
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			key.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && key.Len() > 0 {
				key.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.Trim(key.String(), "-.")
	if out == "" {
		return "image"
	}
	return out
}

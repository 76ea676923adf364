package config

import "strings"

// Sanitize strips invisible and control characters from a raw document before
// decoding. Tabs, newlines, and carriage returns survive; everything else in
// the C0/C1 ranges is dropped, along with zero-width and BOM code points that
// editors and LLM-generated configs tend to smuggle in.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return r
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			return -1
		}
		switch r {
		case 0x200b, 0x200c, 0x200d, 0x2060, 0xfeff: // zero-width and BOM
			return -1
		}
		return r
	}, raw)
}

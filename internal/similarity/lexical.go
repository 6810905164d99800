package similarity

import "github.com/aryann/difflib"

// maxLexicalWords caps the LCS table size per pair.
const maxLexicalWords = 2000

// Lexical returns the word-level overlap ratio 2*common/(len(a)+len(b)),
// in [0, 1].
func Lexical(a, b string) float64 {
	aw, bw := Words(a), Words(b)
	if len(aw) > maxLexicalWords {
		aw = aw[:maxLexicalWords]
	}
	if len(bw) > maxLexicalWords {
		bw = bw[:maxLexicalWords]
	}
	total := len(aw) + len(bw)
	if total == 0 {
		return 1
	}

	common := 0
	for _, r := range difflib.Diff(aw, bw) {
		if r.Delta == difflib.Common {
			common++
		}
	}
	return 2 * float64(common) / float64(total)
}

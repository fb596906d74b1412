package subliminal

import "strings"

// Chunk splits phrase into pieces of at most width runes
// Words are packed greedily on spaces; words wider than width, and space-less
// scripts, are hard sliced
func Chunk(phrase string, width int) []string {
	width = max(1, width)
	words := strings.Fields(phrase)

	var chunks []string
	var line []rune
	flush := func() {
		if len(line) > 0 {
			chunks = append(chunks, string(line))
			line = line[:0]
		}
	}

	for _, w := range words {
		r := []rune(w)
		if len(r) > width {
			flush()
			for len(r) > width {
				chunks = append(chunks, string(r[:width]))
				r = r[width:]
			}
			line = append(line, r...)
			continue
		}
		switch {
		case len(line) == 0:
			line = append(line, r...)
		case len(line)+1+len(r) <= width:
			line = append(line, ' ')
			line = append(line, r...)
		default:
			flush()
			line = append(line, r...)
		}
	}
	flush()
	return chunks
}

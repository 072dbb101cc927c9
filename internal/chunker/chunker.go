// Package chunker splits document text into overlapping windows suitable
// for embedding.
package chunker

const (
	// DefaultChunkSize and DefaultChunkOverlap are in characters.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Split cuts content into windows of at most maxChars characters, each
// sharing overlapChars with its neighbor so content straddling a window edge
// stays retrievable from the next window. Splitting is deterministic and
// never drops a trailing remainder. An overlap at or above maxChars is
// clamped to maxChars/2 so the window start always advances.
func Split(content string, maxChars, overlapChars int) []string {
	if maxChars <= 0 || len(content) == 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	if len(content) <= maxChars {
		return []string{content}
	}

	step := maxChars - overlapChars
	var chunks []string
	for start := 0; start < len(content); start += step {
		end := min(start+maxChars, len(content))

		// Prefer a clean break near the window edge. The lookback is
		// capped by the overlap so consecutive windows still cover
		// every character.
		if end < len(content) {
			lookBack := min(maxChars/10, overlapChars)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if content[i] == ' ' || content[i] == '\n' || content[i] == '.' {
					end = i + 1
					break
				}
			}
		}

		chunks = append(chunks, content[start:end])
		if end == len(content) {
			break
		}
	}
	return chunks
}

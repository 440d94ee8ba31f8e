package source

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultMaxChars is the default chunk size ceiling.
	DefaultMaxChars = 3000
	// DefaultOverlap is the default character budget for whole-word overlap
	// carried from the previous chunk.
	DefaultOverlap = 200
)

var sentenceBoundaryRe = regexp.MustCompile(`(?s)(.*?[.!?])`)

// Chunk splits text into pieces no larger than maxChars, preferring sentence
// boundaries. A single sentence longer than maxChars is split hard. When
// overlap > 0, each chunk after the first is prefixed with whole words from
// the end of the previous chunk, up to overlap characters.
func Chunk(text string, maxChars, overlap int) ([]string, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("maxChars must be > 0, got %d", maxChars)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must be >= 0, got %d", overlap)
	}

	sentences := splitSentences(text)

	var chunks []string
	var cur string

	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(cur)+len(s)+1 <= maxChars {
			if cur == "" {
				cur = s
			} else {
				cur = cur + " " + s
			}
			continue
		}

		if cur != "" {
			chunks = append(chunks, cur)
		}

		// A single oversized sentence is split hard.
		if len(s) > maxChars {
			for i := 0; i < len(s); i += maxChars {
				end := i + maxChars
				if end > len(s) {
					end = len(s)
				}
				chunks = append(chunks, s[i:end])
			}
			cur = ""
		} else {
			cur = s
		}
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}

	if overlap > 0 && len(chunks) > 1 {
		chunks = applyOverlap(chunks, overlap)
	}

	return chunks, nil
}

// splitSentences splits text after sentence-ending punctuation.
func splitSentences(text string) []string {
	matches := sentenceBoundaryRe.FindAllString(text, -1)
	consumed := 0
	for _, m := range matches {
		consumed += len(m)
	}
	// Trailing text without a terminator is kept as a final sentence.
	if consumed < len(text) {
		matches = append(matches, text[consumed:])
	}
	return matches
}

// applyOverlap prefixes each chunk after the first with whole words taken
// from the end of the previous output chunk, never cutting a word in half.
func applyOverlap(chunks []string, overlap int) []string {
	out := make([]string, 0, len(chunks))
	out = append(out, chunks[0])

	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(out[len(out)-1])

		var overlapWords []string
		charCount := 0
		for j := len(prevWords) - 1; j >= 0; j-- {
			w := prevWords[j]
			if charCount+len(w)+1 > overlap {
				break
			}
			overlapWords = append([]string{w}, overlapWords...)
			charCount += len(w) + 1
		}

		if len(overlapWords) > 0 {
			out = append(out, strings.TrimSpace(strings.Join(overlapWords, " ")+" "+chunks[i]))
		} else {
			out = append(out, chunks[i])
		}
	}

	return out
}

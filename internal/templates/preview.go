package templates

import "strings"

// DefaultPreviewLength is the truncation budget for policy previews, in
// characters.
const DefaultPreviewLength = 300

// TruncatePolicy shortens policy text to at most maxLen characters for use
// as a chat preview. The cut prefers the last sentence delimiter past the
// midpoint of the budget, so previews end on a complete sentence whenever
// the text allows it; otherwise it falls back to the last word boundary past
// 80% of the budget and appends an ellipsis. The result never exceeds
// maxLen.
func TruncatePolicy(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultPreviewLength
	}

	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	window := runes[:maxLen]
	mid := maxLen / 2

	// Sentence cut: scan back from the end of the window, but not past the
	// midpoint. A preview that covers less than half the budget reads worse
	// than a word cut.
	for i := len(window) - 1; i >= mid; i-- {
		switch window[i] {
		case '.', '!', '?':
			return strings.TrimSpace(string(window[:i+1]))
		}
	}

	// Word cut: leave room for the ellipsis and require the boundary to sit
	// past 80% of the budget.
	const ellipsis = "..."
	floor := maxLen * 8 / 10
	base := window[:maxLen-len(ellipsis)]
	for i := len(base) - 1; i >= floor; i-- {
		if base[i] == ' ' {
			return strings.TrimSpace(string(base[:i])) + ellipsis
		}
	}

	// No usable boundary: hard cut.
	return strings.TrimSpace(string(base)) + ellipsis
}

// Package resolve de-references the opaque identifiers the archive
// records carry: shortened URLs, numeric user ids, and media keys.
package resolve

import (
	"fmt"
	"sort"

	"github.com/calehart/unspool/internal/domain"
)

// ExpandText replaces each shortened-URL span in text with its expanded
// target. It is a pure local lookup: the archive embeds every expansion.
//
// Spans are applied positionally by offset, highest first, so earlier
// offsets stay valid while later ones are rewritten. The same shortened
// token can appear at different offsets with different expansions; the
// offset decides which expansion applies, never the token. Offsets are
// Unicode code points, matching how the archive indexes entities; any
// span that falls outside the text (or overlaps one already applied) is
// skipped with a warning instead of corrupting the text.
func ExpandText(text string, entities []domain.URLEntity) (string, []domain.ResolvedLink, []string) {
	if len(entities) == 0 {
		return text, nil, nil
	}

	ordered := make([]domain.URLEntity, len(entities))
	copy(ordered, entities)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	runes := []rune(text)
	var warnings []string
	var links []domain.ResolvedLink

	prevStart := len(runes) + 1
	for _, e := range ordered {
		if e.ExpandedURL == "" {
			continue
		}
		if e.Start < 0 || e.End <= e.Start || e.End > len(runes) {
			warnings = append(warnings, fmt.Sprintf("url span [%d,%d) for %q out of bounds, skipped", e.Start, e.End, e.URL))
			continue
		}
		if e.End > prevStart {
			warnings = append(warnings, fmt.Sprintf("url span [%d,%d) for %q overlaps a later span, skipped", e.Start, e.End, e.URL))
			continue
		}

		replacement := []rune(e.ExpandedURL)
		rebuilt := make([]rune, 0, len(runes)-(e.End-e.Start)+len(replacement))
		rebuilt = append(rebuilt, runes[:e.Start]...)
		rebuilt = append(rebuilt, replacement...)
		rebuilt = append(rebuilt, runes[e.End:]...)
		runes = rebuilt

		prevStart = e.Start
		links = append(links, domain.ResolvedLink{URL: e.ExpandedURL, Display: e.DisplayURL})
	}

	// links were gathered highest-offset first; present them in text order.
	for i, j := 0, len(links)-1; i < j; i, j = i+1, j-1 {
		links[i], links[j] = links[j], links[i]
	}

	return string(runes), links, warnings
}

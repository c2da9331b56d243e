package extractor

import (
	"regexp"
	"sort"
	"strings"
)

// Candidate patterns: a $-prefixed symbol and bare uppercase tokens of 1-5
// letters. Both are validated against the registry before acceptance.
var (
	dollarPattern = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)
	barePattern   = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
)

// Extractor scans text for stock ticker symbols. It is deterministic and
// side-effect-free: the same text always yields the same set under a given
// snapshot. Malformed text is never an error; no match yields an empty set.
type Extractor struct {
	registry *Registry
}

// New creates an extractor over the given registry.
func New(registry *Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Extract returns the validated ticker set for text, sorted and
// deduplicated. A candidate survives only if it is in the known-ticker
// registry and not in the stoplist.
func (e *Extractor) Extract(text string) []string {
	return ExtractWith(e.registry.Snapshot(), text)
}

// ExtractWith runs extraction against an explicit snapshot.
func ExtractWith(snap *Snapshot, text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})

	// $-prefixed candidates are matched case-insensitively: the $ sigil is
	// already a strong signal of intent.
	for _, m := range dollarPattern.FindAllStringSubmatch(text, -1) {
		seen[strings.ToUpper(m[1])] = struct{}{}
	}
	for _, m := range barePattern.FindAllString(text, -1) {
		seen[m] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for sym := range seen {
		if !snap.Known(sym) || snap.Stopped(sym) {
			continue
		}
		out = append(out, sym)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

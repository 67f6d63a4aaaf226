package review

import (
	"strings"

	"github.com/Veraticus/spice-reconcile/internal/model"
)

// PropertyField is a transaction property the user can edit inline.
type PropertyField int

// Editable properties.
const (
	PropertyTag PropertyField = iota
	PropertyLink
	PropertyNarration
)

func (f PropertyField) String() string {
	switch f {
	case PropertyTag:
		return "tag"
	case PropertyLink:
		return "link"
	case PropertyNarration:
		return "narration"
	default:
		return "unknown"
	}
}

// initialText is what a property editor starts with.
func (f PropertyField) initialText(c model.Candidate) string {
	if f != PropertyNarration {
		return ""
	}
	if primary, ok := c.Primary(); ok {
		return primary.Narration
	}
	return ""
}

// ApplyPropertyEdit returns props with the editor text applied. Tag and link
// text is split on whitespace and appended, skipping duplicates; a leading
// '#' or '^' is dropped. Narration text replaces the narration.
func ApplyPropertyEdit(props model.TransactionProperties, field PropertyField, text string) model.TransactionProperties {
	out := props.Clone()
	switch field {
	case PropertyNarration:
		out.Narration = strings.TrimSpace(text)
	case PropertyTag:
		out.Tags = appendUnique(out.Tags, text, "#")
	case PropertyLink:
		out.Links = appendUnique(out.Links, text, "^")
	}
	return out
}

func appendUnique(existing []string, text, sigil string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, word := range strings.Fields(text) {
		word = strings.TrimPrefix(word, sigil)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		existing = append(existing, word)
	}
	return existing
}

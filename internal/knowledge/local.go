package knowledge

import (
	"fmt"
	"strings"
)

// Structured-data accessors used both by retrieval and directly by the
// topic generators.

// PlantingCalendar returns the calendar entry for a crop.
func PlantingCalendar(crop string) (CalendarEntry, bool) {
	c := strings.ToLower(strings.TrimSpace(crop))
	for _, e := range plantingCalendar {
		if e.Crop == c {
			return e, true
		}
	}
	return CalendarEntry{}, false
}

// PestsMatching returns pest entries whose name or symptoms appear in the
// text, or that attack the given crop when the text mentions pest trouble.
func PestsMatching(text, crop string) []PestEntry {
	lower := strings.ToLower(text)
	cropLower := strings.ToLower(crop)

	var out []PestEntry
	for _, p := range pestTable {
		if strings.Contains(lower, p.Name) {
			out = append(out, p)
			continue
		}
		for _, s := range p.Symptoms {
			if strings.Contains(lower, s) {
				out = append(out, p)
				break
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	// No direct match: fall back to the crop's known pests.
	for _, p := range pestTable {
		for _, c := range p.Crops {
			if c == cropLower || strings.Contains(lower, c) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// LivestockFor returns the husbandry entry for an animal mentioned in text.
func LivestockFor(text string) (LivestockEntry, bool) {
	lower := strings.ToLower(text)
	for _, e := range livestockGuide {
		if strings.Contains(lower, e.Animal) {
			return e, true
		}
		for _, a := range e.Aliases {
			if strings.Contains(lower, a) {
				return e, true
			}
		}
	}
	return LivestockEntry{}, false
}

// MarketNoteFor returns the market note for a commodity.
func MarketNoteFor(commodity string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(commodity))
	for _, n := range marketNotes {
		if n.Commodity == c {
			return n.Note, true
		}
	}
	return "", false
}

// ExtensionNotes returns advisory-services guidance.
func ExtensionNotes() []string {
	out := make([]string, len(extensionNotes))
	copy(out, extensionNotes)
	return out
}

// localPassages renders every structured entry relevant to the query and
// context as a text passage. It never fails and performs no I/O.
func localPassages(query string, rc Context) []string {
	var out []string
	lower := strings.ToLower(query)

	crop := rc.Crop
	if crop == "" {
		for _, e := range plantingCalendar {
			if strings.Contains(lower, e.Crop) {
				crop = e.Crop
				break
			}
		}
	}

	if e, ok := PlantingCalendar(crop); ok {
		out = append(out, fmt.Sprintf(
			"%s planting: %s. Varieties: %s. Spacing: %s. %s",
			title(e.Crop), e.PlantingMonths,
			strings.Join(e.Varieties, ", "), e.Spacing, e.Notes))
	}

	if containsAny(lower, "pest", "disease", "holes", "spots", "yellowing", "wilt",
		"armyworm", "aphid", "blight", "insect", "dying", "sick", "rot", "mold") {
		for _, p := range PestsMatching(lower, crop) {
			out = append(out, fmt.Sprintf(
				"%s (affects %s). Symptoms: %s. Treatment: %s",
				title(p.Name), strings.Join(p.Crops, ", "),
				strings.Join(p.Symptoms, "; "), p.Treatment))
		}
	}

	if e, ok := LivestockFor(lower); ok {
		out = append(out, fmt.Sprintf("%s feeding: %s", title(e.Animal), e.Feeding))
		out = append(out, fmt.Sprintf("%s health: %s", title(e.Animal), e.Health))
	}

	if note, ok := MarketNoteFor(crop); ok && containsAny(lower, "price", "market", "sell", "buy") {
		out = append(out, note)
	}

	if containsAny(lower, "extension", "loan", "credit", "training", "subsidy", "cooperative") {
		out = append(out, ExtensionNotes()...)
	}

	return out
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

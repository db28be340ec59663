package formulary

import (
	"strings"

	"github.com/giygas/vetdose/formulary/entities"
	"golang.org/x/text/cases"
)

// Filter narrows a formulary for display. A non-empty query searches the whole
// catalog instead of the tab subset. The species filter and the name/category
// match are combined as a conjunction.
func Filter(subset, all []entities.Drug, query string, onlyActiveSpecies bool, species entities.Species) []entities.Drug {
	// Casers are stateful; one per call.
	fold := cases.Fold()

	q := strings.TrimSpace(query)
	source := subset
	if q != "" {
		source = all
		q = fold.String(q)
	}

	out := make([]entities.Drug, 0, len(source))
	for _, d := range source {
		if onlyActiveSpecies && !d.AppliesTo(species) {
			continue
		}
		if q != "" && !strings.Contains(fold.String(d.Name), q) && !strings.Contains(fold.String(d.Category), q) {
			continue
		}
		out = append(out, d)
	}

	return out
}

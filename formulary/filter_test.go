package formulary

import (
	"testing"

	"github.com/giygas/vetdose/formulary/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(drugs []entities.Drug) []string {
	out := make([]string, 0, len(drugs))
	for _, d := range drugs {
		out = append(out, d.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	c, err := Seed()
	require.NoError(t, err)
	common, err := c.TabDrugs("common")
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		only     bool
		species  entities.Species
		expected []string
	}{
		{"tab subset without query", "", false, entities.SpeciesDog, []string{"marop", "butor", "amoxi"}},
		{"species filter on tab", "", true, entities.SpeciesRabbit, []string{"butor"}},
		{"query widens to all tabs", "opioid", false, entities.SpeciesDog, []string{"butor", "meth"}},
		{"query is case insensitive", "PROPOFOL", false, entities.SpeciesDog, []string{"prop", "prop_inj"}},
		{"query matches category", "insulin", false, entities.SpeciesDog, []string{"vetsu_inj"}},
		{"query trimmed", "  ketamine ", false, entities.SpeciesDog, []string{"ket"}},
		{"query and species conjunction", "opioid", true, entities.SpeciesRat, []string{"butor"}},
		{"whitespace query keeps tab scope", "   ", true, entities.SpeciesCat, []string{"marop", "butor", "amoxi"}},
		{"no match", "epinephrine", false, entities.SpeciesDog, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(common, c.Drugs(), tt.query, tt.only, tt.species)
			assert.Equal(t, tt.expected, names(got))
		})
	}
}

func TestSearch(t *testing.T) {
	c, err := Seed()
	require.NoError(t, err)

	got, err := c.Search("anes", "", true, entities.SpeciesRabbit)
	require.NoError(t, err)
	assert.Equal(t, []string{"meth"}, names(got))

	_, err = c.Search("bogus", "", false, entities.SpeciesDog)
	assert.ErrorIs(t, err, ErrUnknownTab)
}

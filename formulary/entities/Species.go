package entities

// Species is a patient species tag.
type Species string

const (
	SpeciesDog       Species = "dog"
	SpeciesCat       Species = "cat"
	SpeciesRabbit    Species = "rabbit"
	SpeciesGuineaPig Species = "gpig"
	SpeciesRat       Species = "rat"
)

// DefaultSpecies is the species a new session starts with.
const DefaultSpecies = SpeciesDog

// AllSpecies lists the supported species in display order.
var AllSpecies = []Species{SpeciesDog, SpeciesCat, SpeciesRabbit, SpeciesGuineaPig, SpeciesRat}

var speciesNames = map[Species]string{
	SpeciesDog:       "Dog",
	SpeciesCat:       "Cat",
	SpeciesRabbit:    "Rabbit",
	SpeciesGuineaPig: "Guinea pig",
	SpeciesRat:       "Rat",
}

// Valid reports whether s is a supported species tag.
func (s Species) Valid() bool {
	_, ok := speciesNames[s]
	return ok
}

// DisplayName returns the human readable species name.
func (s Species) DisplayName() string {
	if name, ok := speciesNames[s]; ok {
		return name
	}
	return string(s)
}

// WeightUnit is the unit a patient weight was entered in.
type WeightUnit string

const (
	UnitKilogram WeightUnit = "kg"
	UnitPound    WeightUnit = "lb"
)

// DefaultWeightUnit is the unit a new session starts with.
const DefaultWeightUnit = UnitPound

// Valid reports whether u is kg or lb.
func (u WeightUnit) Valid() bool {
	return u == UnitKilogram || u == UnitPound
}

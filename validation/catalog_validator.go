// Package validation checks catalog entries and user input for the dosing service.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/formulary/entities"
	"github.com/giygas/vetdose/interfaces"
	"github.com/giygas/vetdose/logging"
)

var (
	// Drug ids are used in URL paths and session keys
	drugIDRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

	// Search input: letters (accents included), digits, spaces and the punctuation found in drug names
	inputRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+'/(),]+$`)

	// Substring checks are cheaper than regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(", "@import",
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(",
		"`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
	}
)

const (
	maxDrugIDLength  = 50
	maxNameLength    = 200
	maxLabelLength   = 100
	maxNotesLength   = 2000
	maxInputLength   = 50
	maxInputWords    = 6
	maxRepeatedChars = 10
)

// Compile-time check to ensure CatalogValidatorImpl implements CatalogValidator
var _ interfaces.CatalogValidator = (*CatalogValidatorImpl)(nil)

// CatalogValidatorImpl implements interfaces.CatalogValidator
type CatalogValidatorImpl struct{}

// NewCatalogValidator creates a new catalog validator
func NewCatalogValidator() interfaces.CatalogValidator {
	return &CatalogValidatorImpl{}
}

// ValidateDrug checks that a drug can be served. Unset concentrations and
// missing ranges are allowed here; they surface as sentinel results and in
// the quality report.
func (v *CatalogValidatorImpl) ValidateDrug(d *entities.Drug) error {
	if d == nil {
		return fmt.Errorf("drug is nil")
	}

	if !drugIDRegex.MatchString(d.ID) {
		return fmt.Errorf("invalid drug id %q", d.ID)
	}
	if len(d.ID) > maxDrugIDLength {
		return fmt.Errorf("drug id too long: %d characters", len(d.ID))
	}

	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("empty name for drug %s", d.ID)
	}
	if len(d.Name) > maxNameLength {
		return fmt.Errorf("name too long for drug %s: %d characters", d.ID, len(d.Name))
	}
	if len(d.Notes) > maxNotesLength {
		return fmt.Errorf("notes too long for drug %s: %d characters", d.ID, len(d.Notes))
	}

	if len(d.Species) == 0 {
		return fmt.Errorf("drug %s lists no species", d.ID)
	}
	for _, s := range d.Species {
		if !s.Valid() {
			return fmt.Errorf("drug %s lists unknown species %q", d.ID, s)
		}
	}

	if d.DoseMin != nil && d.DoseMax != nil {
		if err := checkRange(entities.DoseRange{Min: *d.DoseMin, Max: *d.DoseMax}); err != nil {
			return fmt.Errorf("drug %s: %w", d.ID, err)
		}
	}
	for s, r := range d.DoseRanges {
		if !s.Valid() {
			return fmt.Errorf("drug %s has a range for unknown species %q", d.ID, s)
		}
		if err := checkRange(r); err != nil {
			return fmt.Errorf("drug %s, %s: %w", d.ID, s, err)
		}
	}

	for i, p := range d.Presentations {
		if strings.TrimSpace(p.Label) == "" {
			return fmt.Errorf("drug %s presentation %d has no label", d.ID, i)
		}
		if len(p.Label) > maxLabelLength {
			return fmt.Errorf("drug %s presentation %d label too long", d.ID, i)
		}
		if p.Kind != entities.KindLiquid && p.Kind != entities.KindSolid {
			return fmt.Errorf("drug %s presentation %q has unknown kind %q", d.ID, p.Label, p.Kind)
		}
	}

	return nil
}

func checkRange(r entities.DoseRange) error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("negative dose range %g-%g", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("dose range minimum %g exceeds maximum %g", r.Min, r.Max)
	}
	return nil
}

// ValidateCatalog validates every drug of a catalog
func (v *CatalogValidatorImpl) ValidateCatalog(c *formulary.Catalog) error {
	if c == nil {
		return fmt.Errorf("catalog is nil")
	}

	drugs := c.Drugs()
	if len(drugs) == 0 {
		return fmt.Errorf("no drugs found")
	}

	for i := range drugs {
		if err := v.ValidateDrug(&drugs[i]); err != nil {
			return fmt.Errorf("invalid catalog entry: %w", err)
		}
	}

	return nil
}

// ReportCatalogQuality lists entries that load but produce sentinel results
// for some patients.
func (v *CatalogValidatorImpl) ReportCatalogQuality(c *formulary.Catalog) *interfaces.CatalogQualityReport {
	report := &interfaces.CatalogQualityReport{
		DrugsWithoutPresentations: []string{},
		DrugsWithoutRange:         []string{},
		UnsetConcentrations:       []string{},
		OverridesForUnlisted:      []string{},
	}
	if c == nil {
		return report
	}

	for _, d := range c.Drugs() {
		if !d.HasPresentations() {
			report.DrugsWithoutPresentations = append(report.DrugsWithoutPresentations, d.ID)
		}

		generic := d.DoseMin != nil && d.DoseMax != nil
		if !generic {
			for _, s := range d.Species {
				if _, ok := d.DoseRanges[s]; !ok {
					report.DrugsWithoutRange = append(report.DrugsWithoutRange, d.ID)
					break
				}
			}
		}

		for _, p := range d.Presentations {
			if p.Value <= 0 {
				report.UnsetConcentrations = append(report.UnsetConcentrations, d.ID+"/"+p.Label)
			}
		}

		for _, s := range entities.AllSpecies {
			if _, ok := d.DoseRanges[s]; ok && !d.AppliesTo(s) {
				report.OverridesForUnlisted = append(report.OverridesForUnlisted, d.ID+"/"+string(s))
			}
		}
	}

	if n := len(report.DrugsWithoutRange) + len(report.UnsetConcentrations); n > 0 {
		logging.Warn("Catalog has entries that cannot be fully dosed",
			"without_range", report.DrugsWithoutRange,
			"unset_concentrations", report.UnsetConcentrations,
		)
	}

	return report
}

// ValidateInput validates free-text search input
func (v *CatalogValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > maxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", maxInputLength)
	}

	if len(strings.Fields(input)) > maxInputWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", maxInputWords)
	}

	lower := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and - . + ' / ( ) , are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateSpecies parses a species tag, case-insensitively
func (v *CatalogValidatorImpl) ValidateSpecies(input string) (entities.Species, error) {
	s := entities.Species(strings.ToLower(strings.TrimSpace(input)))
	if s == "" {
		return "", fmt.Errorf("species cannot be empty")
	}
	if !s.Valid() {
		return "", fmt.Errorf("unknown species %q: expected one of %s", input, speciesList())
	}
	return s, nil
}

// ValidateUnit parses a weight unit, case-insensitively
func (v *CatalogValidatorImpl) ValidateUnit(input string) (entities.WeightUnit, error) {
	u := entities.WeightUnit(strings.ToLower(strings.TrimSpace(input)))
	if !u.Valid() {
		return "", fmt.Errorf("unknown weight unit %q: expected kg or lb", input)
	}
	return u, nil
}

func speciesList() string {
	names := make([]string, len(entities.AllSpecies))
	for i, s := range entities.AllSpecies {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// hasExcessiveRepetition reports a byte repeated more than maxRepeatedChars times in a row
func hasExcessiveRepetition(input string) bool {
	run := 1
	for i := 1; i < len(input); i++ {
		if input[i] == input[i-1] {
			run++
			if run > maxRepeatedChars {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

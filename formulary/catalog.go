// Package formulary loads the drug catalog and filters it for display.
// The seed catalog is embedded at build time; an alternative YAML file with
// the same schema can be supplied at start-up.
package formulary

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/giygas/vetdose/formulary/entities"
	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var seedCatalog []byte

var (
	ErrUnknownDrug = errors.New("unknown drug")
	ErrUnknownTab  = errors.New("unknown tab")
)

type catalogFile struct {
	Tabs []struct {
		ID    string          `yaml:"id"`
		Title string          `yaml:"title"`
		Drugs []entities.Drug `yaml:"drugs"`
	} `yaml:"tabs"`
	SearchOrder []string `yaml:"search_order"`
}

// Catalog is an immutable, indexed formulary.
type Catalog struct {
	drugs    []entities.Drug
	byID     map[string]entities.Drug
	tabs     []entities.Tab
	tabDrugs map[string][]entities.Drug
}

// Source produces a catalog; it is what the scheduler loads at start-up.
type Source struct {
	Path string // empty means the embedded seed
}

// LoadCatalog reads and parses the configured catalog.
func (s Source) LoadCatalog() (*Catalog, error) {
	if s.Path == "" {
		return Parse(seedCatalog)
	}

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.Path, err)
	}
	return Parse(raw)
}

// Seed returns the embedded seed catalog.
func Seed() (*Catalog, error) {
	return Parse(seedCatalog)
}

// Parse decodes a YAML catalog and indexes it. Drug ids must be unique
// across tabs.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(file.Tabs) == 0 {
		return nil, fmt.Errorf("catalog has no tabs")
	}

	c := &Catalog{
		byID:     make(map[string]entities.Drug),
		tabDrugs: make(map[string][]entities.Drug),
	}

	for _, t := range file.Tabs {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog tab without id")
		}
		if _, dup := c.tabDrugs[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tab id %q", t.ID)
		}

		tab := entities.Tab{ID: t.ID, Title: t.Title, DrugIDs: make([]string, 0, len(t.Drugs))}
		for _, d := range t.Drugs {
			if d.ID == "" {
				return nil, fmt.Errorf("drug %q in tab %q has no id", d.Name, t.ID)
			}
			if _, dup := c.byID[d.ID]; dup {
				return nil, fmt.Errorf("duplicate drug id %q", d.ID)
			}
			c.byID[d.ID] = d
			tab.DrugIDs = append(tab.DrugIDs, d.ID)
		}

		c.tabs = append(c.tabs, tab)
		c.tabDrugs[t.ID] = t.Drugs
	}

	order := file.SearchOrder
	if len(order) == 0 {
		for _, t := range c.tabs {
			order = append(order, t.ID)
		}
	}
	for _, id := range order {
		drugs, ok := c.tabDrugs[id]
		if !ok {
			return nil, fmt.Errorf("search order references %w %q", ErrUnknownTab, id)
		}
		c.drugs = append(c.drugs, drugs...)
	}
	if len(c.drugs) != len(c.byID) {
		return nil, fmt.Errorf("search order covers %d of %d drugs", len(c.drugs), len(c.byID))
	}

	return c, nil
}

// Drugs returns every drug in cross-tab search order.
func (c *Catalog) Drugs() []entities.Drug {
	return c.drugs
}

// Drug looks a drug up by id.
func (c *Catalog) Drug(id string) (entities.Drug, error) {
	d, ok := c.byID[id]
	if !ok {
		return entities.Drug{}, fmt.Errorf("%w: %q", ErrUnknownDrug, id)
	}
	return d, nil
}

// DrugsMap returns the id index.
func (c *Catalog) DrugsMap() map[string]entities.Drug {
	return c.byID
}

// Tabs returns the browsing tabs in display order.
func (c *Catalog) Tabs() []entities.Tab {
	return c.tabs
}

// TabDrugs returns the drugs of one tab. An empty id selects the whole catalog.
func (c *Catalog) TabDrugs(tabID string) ([]entities.Drug, error) {
	if tabID == "" {
		return c.drugs, nil
	}
	drugs, ok := c.tabDrugs[tabID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tabID)
	}
	return drugs, nil
}

// Search applies Filter to a tab of this catalog.
func (c *Catalog) Search(tabID, query string, onlyActiveSpecies bool, species entities.Species) ([]entities.Drug, error) {
	subset, err := c.TabDrugs(tabID)
	if err != nil {
		return nil, err
	}
	return Filter(subset, c.drugs, query, onlyActiveSpecies, species), nil
}

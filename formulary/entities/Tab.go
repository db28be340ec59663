package entities

// Tab groups drugs the way the formulary is browsed.
type Tab struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	DrugIDs []string `json:"drugIds" yaml:"-"`
}

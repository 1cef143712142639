package domain

// CatalogEntry is a reference record in the searchable product catalog.
// The matching engine never mutates a CatalogEntry; ID is stable once created.
type CatalogEntry struct {
	ID         string   `json:"id"`
	Brand      string   `json:"brand,omitempty"`
	Name       string   `json:"name"`
	CacaoPct   *int     `json:"cacaoPct,omitempty"` // percentage composition, [0,100] by convention
	Categories []string `json:"categories,omitempty"`
	Origins    []string `json:"origins,omitempty"`
}

// SourceRecord is an internal catalog record to be reconciled against an
// external product database. Absent fields are empty, never placeholders.
type SourceRecord struct {
	ID       string `json:"id"`
	Brand    string `json:"brand,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	CacaoPct *int   `json:"cacaoPct,omitempty"`
}

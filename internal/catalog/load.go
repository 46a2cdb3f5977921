package catalog

import "log/slog"

// Report is the outcome of validating both tables at startup.
type Report struct {
	Exchanges BatchResult `json:"exchanges"`
	Regions   BatchResult `json:"regions"`
}

// Invalid returns the total number of rejected entries.
func (r Report) Invalid() int {
	return r.Exchanges.InvalidCount + r.Regions.InvalidCount
}

// Build validates the tables, logs every rejected entry and returns a catalog
// over the valid ones.
func Build(log *slog.Logger, exs []Exchange, rgs []CloudRegion) (*Catalog, Report) {
	validEx, exRes := ValidateExchanges(exs)
	validRg, rgRes := ValidateRegions(rgs)
	for _, e := range exRes.Errors {
		log.Warn("invalid exchange", "index", e.Index, "id", e.ID, "errors", e.Errors)
	}
	for _, e := range rgRes.Errors {
		log.Warn("invalid region", "index", e.Index, "id", e.ID, "errors", e.Errors)
	}
	log.Debug("catalog loaded",
		"exchanges", exRes.ValidCount, "regions", rgRes.ValidCount,
		"rejected", exRes.InvalidCount+rgRes.InvalidCount)
	return New(validEx, validRg), Report{Exchanges: exRes, Regions: rgRes}
}

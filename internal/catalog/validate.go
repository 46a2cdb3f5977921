package catalog

import (
	"fmt"
	"math"
	"strings"

	"exchange-latency-sim/internal/geo"
)

// ValidationResult carries the field level errors found for one item.
type ValidationResult struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

func result(errs []string) ValidationResult {
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validProvider(p Provider) bool {
	for _, v := range Providers {
		if p == v {
			return true
		}
	}
	return false
}

func validStatus(s Status) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusMaintenance:
		return true
	}
	return false
}

func validCapacity(c float64) bool {
	return !math.IsNaN(c) && c >= 0 && c <= 100
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ValidateExchange checks every field of an exchange.
func ValidateExchange(e Exchange) ValidationResult {
	var errs []string
	if blank(e.ID) {
		errs = append(errs, "Exchange ID is required and must be a string")
	}
	if blank(e.Name) {
		errs = append(errs, "Exchange name is required and must be a string")
	}
	if !e.Location.Coordinate.Valid() {
		errs = append(errs, "Exchange location coordinates are invalid")
	}
	if blank(e.Location.City) {
		errs = append(errs, "Exchange city is required and must be a string")
	}
	if blank(e.Location.Country) {
		errs = append(errs, "Exchange country is required and must be a string")
	}
	if !validProvider(e.CloudProvider) {
		errs = append(errs, "Exchange cloud provider must be one of: AWS, GCP, Azure")
	}
	if blank(e.Region) {
		errs = append(errs, "Exchange region is required and must be a string")
	}
	if !validStatus(e.Status) {
		errs = append(errs, "Exchange status must be one of: online, offline, maintenance")
	}
	if e.ServerCount < 0 {
		errs = append(errs, "Exchange server count must be a non-negative number")
	}
	if !validCapacity(e.Capacity) {
		errs = append(errs, "Exchange capacity must be a number between 0 and 100")
	}
	return result(errs)
}

// ValidateRegion checks every field of a cloud region.
func ValidateRegion(r CloudRegion) ValidationResult {
	var errs []string
	if blank(r.ID) {
		errs = append(errs, "Region ID is required and must be a string")
	}
	if blank(r.Name) {
		errs = append(errs, "Region name is required and must be a string")
	}
	if blank(r.Code) {
		errs = append(errs, "Region code is required and must be a string")
	}
	if !validProvider(r.Provider) {
		errs = append(errs, "Region provider must be one of: AWS, GCP, Azure")
	}
	if !r.Location.Valid() {
		errs = append(errs, "Region location coordinates are invalid")
	}
	if r.ServerCount < 0 {
		errs = append(errs, "Region server count must be a non-negative number")
	}
	if !validCapacity(r.Capacity) {
		errs = append(errs, "Region capacity must be a number between 0 and 100")
	}
	if r.Exchanges == nil {
		errs = append(errs, "Region exchanges must be an array")
	}
	for i, id := range r.Exchanges {
		if blank(id) {
			errs = append(errs, fmt.Sprintf("Region exchange at index %d must be a string", i))
		}
	}
	return result(errs)
}

// SanitizeExchange trims strings and clamps coordinates, counts and capacity
// into range. Enumerations are left untouched so validation still flags them.
func SanitizeExchange(e Exchange) Exchange {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Region = strings.TrimSpace(e.Region)
	e.Location.City = strings.TrimSpace(e.Location.City)
	e.Location.Country = strings.TrimSpace(e.Location.Country)
	e.Location.Coordinate = geo.Clamp(e.Location.Coordinate)
	if e.ServerCount < 0 {
		e.ServerCount = 0
	}
	e.Capacity = clampCapacity(e.Capacity)
	return e
}

// SanitizeRegion is the region counterpart of SanitizeExchange.
func SanitizeRegion(r CloudRegion) CloudRegion {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
	r.Location = geo.Clamp(r.Location)
	if r.ServerCount < 0 {
		r.ServerCount = 0
	}
	r.Capacity = clampCapacity(r.Capacity)
	ids := make([]string, 0, len(r.Exchanges))
	for _, id := range r.Exchanges {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	r.Exchanges = ids
	return r
}

func clampCapacity(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return math.Max(0, math.Min(100, c))
}

// ItemError ties validation errors to the index of the offending item.
type ItemError struct {
	Index  int      `json:"index"`
	ID     string   `json:"id"`
	Errors []string `json:"errors"`
}

// BatchResult summarises validation of a whole table.
type BatchResult struct {
	ValidCount   int         `json:"validCount"`
	InvalidCount int         `json:"invalidCount"`
	Errors       []ItemError `json:"errors"`
}

// ValidateExchanges validates a table and returns the valid subset alongside
// the summary. Invalid entries are excluded, not fatal.
func ValidateExchanges(exs []Exchange) ([]Exchange, BatchResult) {
	var (
		valid []Exchange
		res   BatchResult
	)
	for i, e := range exs {
		r := ValidateExchange(e)
		if r.Valid {
			valid = append(valid, e)
			res.ValidCount++
			continue
		}
		res.InvalidCount++
		res.Errors = append(res.Errors, ItemError{Index: i, ID: e.ID, Errors: r.Errors})
	}
	return valid, res
}

// ValidateRegions validates a region table like ValidateExchanges.
func ValidateRegions(rgs []CloudRegion) ([]CloudRegion, BatchResult) {
	var (
		valid []CloudRegion
		res   BatchResult
	)
	for i, r := range rgs {
		vr := ValidateRegion(r)
		if vr.Valid {
			valid = append(valid, r)
			res.ValidCount++
			continue
		}
		res.InvalidCount++
		res.Errors = append(res.Errors, ItemError{Index: i, ID: r.ID, Errors: vr.Errors})
	}
	return valid, res
}

package export

import (
	"encoding/json"
	"io"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/geo"
	"exchange-latency-sim/internal/telemetry"
)

// ExchangeSummary is the exchange entry of the metadata block.
type ExchangeSummary struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Location      catalog.Location `json:"location"`
	CloudProvider catalog.Provider `json:"cloudProvider"`
}

// RegionSummary is the region entry of the metadata block.
type RegionSummary struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Provider catalog.Provider `json:"provider"`
	Location geo.Coordinate   `json:"location"`
}

// Metadata describes a JSON export.
type Metadata struct {
	ExportedAt   string            `json:"exportedAt"`
	Version      string            `json:"version"`
	DataType     string            `json:"dataType"`
	TotalRecords int               `json:"totalRecords"`
	Exchanges    []ExchangeSummary `json:"exchanges,omitempty"`
	Regions      []RegionSummary   `json:"regions,omitempty"`
}

// Document is the top level JSON export.
type Document struct {
	Data     any       `json:"data"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

func metadata(dataType string, total int, opts Options) *Metadata {
	if !opts.Metadata {
		return nil
	}
	md := &Metadata{
		ExportedAt:   isoTime(opts.now()),
		Version:      Version,
		DataType:     dataType,
		TotalRecords: total,
	}
	for _, e := range opts.Exchanges {
		md.Exchanges = append(md.Exchanges, ExchangeSummary{ID: e.ID, Name: e.Name, Location: e.Location, CloudProvider: e.CloudProvider})
	}
	for _, r := range opts.Regions {
		md.Regions = append(md.Regions, RegionSummary{ID: r.ID, Name: r.Name, Provider: r.Provider, Location: r.Location})
	}
	return md
}

func writeDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// RecordsJSON writes snapshot records as an indented JSON document.
func RecordsJSON(w io.Writer, records []telemetry.LatencyRecord, opts Options) error {
	if records == nil {
		records = []telemetry.LatencyRecord{}
	}
	return writeDocument(w, Document{Data: records, Metadata: metadata("current", len(records), opts)})
}

// HistoryJSON writes historical points as an indented JSON document.
func HistoryJSON(w io.Writer, points []telemetry.HistoricalPoint, opts Options) error {
	if points == nil {
		points = []telemetry.HistoricalPoint{}
	}
	return writeDocument(w, Document{Data: points, Metadata: metadata("historical", len(points), opts)})
}

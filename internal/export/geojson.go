package export

import (
	"io"

	geojson "github.com/paulmach/go.geojson"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/geo"
	"exchange-latency-sim/internal/telemetry"
)

func point(c geo.Coordinate) []float64 { return []float64{c.Lng, c.Lat} }

// FeatureCollection builds a GeoJSON collection with one point per exchange
// and region and one line string per record route. Records whose route is
// empty are left out.
func FeatureCollection(exchanges []catalog.Exchange, regions []catalog.CloudRegion, records []telemetry.LatencyRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range exchanges {
		f := geojson.NewPointFeature(point(e.Location.Coordinate))
		f.ID = e.ID
		f.SetProperty("kind", "exchange")
		f.SetProperty("name", e.Name)
		f.SetProperty("provider", string(e.CloudProvider))
		f.SetProperty("region", e.Region)
		f.SetProperty("status", string(e.Status))
		f.SetProperty("city", e.Location.City)
		f.SetProperty("country", e.Location.Country)
		if cc := catalog.CountryCode(e.Location.Country); cc != "" {
			f.SetProperty("countryCode", cc)
		}
		f.SetProperty("serverCount", e.ServerCount)
		f.SetProperty("capacity", e.Capacity)
		fc.AddFeature(f)
	}
	for _, r := range regions {
		f := geojson.NewPointFeature(point(r.Location))
		f.ID = r.ID
		f.SetProperty("kind", "region")
		f.SetProperty("name", r.Name)
		f.SetProperty("code", r.Code)
		f.SetProperty("provider", string(r.Provider))
		f.SetProperty("serverCount", r.ServerCount)
		f.SetProperty("capacity", r.Capacity)
		fc.AddFeature(f)
	}
	for _, rec := range records {
		if len(rec.Route) < 2 {
			continue
		}
		line := make([][]float64, len(rec.Route))
		for i, c := range rec.Route {
			line[i] = point(c)
		}
		f := geojson.NewLineStringFeature(line)
		f.ID = telemetry.PairKey(rec.From, rec.To)
		f.SetProperty("kind", "route")
		f.SetProperty("from", rec.From)
		f.SetProperty("to", rec.To)
		f.SetProperty("latency", rec.Latency)
		f.SetProperty("status", string(rec.Status))
		if rec.PacketLoss != nil {
			f.SetProperty("packetLoss", *rec.PacketLoss)
		}
		if rec.Jitter != nil {
			f.SetProperty("jitter", *rec.Jitter)
		}
		f.SetProperty("label", point(geo.Midpoint(rec.Route[0], rec.Route[len(rec.Route)-1])))
		fc.AddFeature(f)
	}
	return fc
}

// WriteGeoJSON encodes the collection built by FeatureCollection to w.
func WriteGeoJSON(w io.Writer, exchanges []catalog.Exchange, regions []catalog.CloudRegion, records []telemetry.LatencyRecord) error {
	b, err := FeatureCollection(exchanges, regions, records).MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

package sim

import "exchange-latency-sim/internal/telemetry"

// RecordWriter is an interface to support different output writers.
type RecordWriter interface {
	Write(telemetry.LatencyRecord) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.LatencyRecord) error
}

// EventWriter handles network incidents.
type EventWriter interface {
	WriteEvent(telemetry.NetworkEvent) error
}

// Optional: Event writers may support batch mode
type batchEventWriter interface {
	WriteEvents([]telemetry.NetworkEvent) error
}

// HistoryWriter stores generated historical series.
type HistoryWriter interface {
	WriteHistory([]telemetry.HistoricalPoint) error
}

// writeRecords uses WriteBatch when w supports it.
func writeRecords(w RecordWriter, recs []telemetry.LatencyRecord) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(recs)
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// writeEvents uses WriteEvents when w supports it.
func writeEvents(w EventWriter, evs []telemetry.NetworkEvent) error {
	if bw, ok := w.(batchEventWriter); ok {
		return bw.WriteEvents(evs)
	}
	for _, e := range evs {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

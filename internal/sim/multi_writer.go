package sim

import (
	"errors"

	"exchange-latency-sim/internal/telemetry"
)

// MultiWriter fan-outs records, events and history to multiple writers.
type MultiWriter struct {
	recordWriters  []RecordWriter
	eventWriters   []EventWriter
	historyWriters []HistoryWriter
}

// NewMultiWriter creates a new MultiWriter. Writers in rws that also
// implement EventWriter or HistoryWriter receive those writes too.
func NewMultiWriter(rws ...RecordWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range rws {
		mw.Add(w)
	}
	return mw
}

// Add registers w for every write kind it supports.
func (mw *MultiWriter) Add(w any) {
	if rw, ok := w.(RecordWriter); ok {
		mw.recordWriters = append(mw.recordWriters, rw)
	}
	if ew, ok := w.(EventWriter); ok {
		mw.eventWriters = append(mw.eventWriters, ew)
	}
	if hw, ok := w.(HistoryWriter); ok {
		mw.historyWriters = append(mw.historyWriters, hw)
	}
}

// Write sends a record to all writers.
func (mw *MultiWriter) Write(r telemetry.LatencyRecord) error {
	for _, w := range mw.recordWriters {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple records to all writers, using batch if supported.
// Every writer is attempted; the errors are joined.
func (mw *MultiWriter) WriteBatch(recs []telemetry.LatencyRecord) error {
	var errs []error
	for _, w := range mw.recordWriters {
		if err := writeRecords(w, recs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteEvent sends an event to all event writers.
func (mw *MultiWriter) WriteEvent(e telemetry.NetworkEvent) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple events to all event writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(evs []telemetry.NetworkEvent) error {
	var errs []error
	for _, w := range mw.eventWriters {
		if err := writeEvents(w, evs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteHistory sends a series to all history writers.
func (mw *MultiWriter) WriteHistory(pts []telemetry.HistoricalPoint) error {
	var errs []error
	for _, w := range mw.historyWriters {
		if err := w.WriteHistory(pts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

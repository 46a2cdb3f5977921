package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"exchange-latency-sim/internal/telemetry"
)

// JSONStdoutWriter prints records, events and history as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a latency record in JSON format.
func (w *JSONStdoutWriter) Write(r telemetry.LatencyRecord) error { return w.emit(r) }

// WriteBatch outputs multiple records in JSON format.
func (w *JSONStdoutWriter) WriteBatch(recs []telemetry.LatencyRecord) error {
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent outputs a network event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e telemetry.NetworkEvent) error { return w.emit(e) }

// WriteHistory outputs historical points in JSON format.
func (w *JSONStdoutWriter) WriteHistory(pts []telemetry.HistoricalPoint) error {
	for _, p := range pts {
		if err := w.emit(p); err != nil {
			return err
		}
	}
	return nil
}

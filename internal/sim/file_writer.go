package sim

import (
	"encoding/json"
	"os"

	"exchange-latency-sim/internal/telemetry"
)

// FileWriter writes records, events and history to JSONL files.
type FileWriter struct {
	recFile   *os.File
	eventFile *os.File
	histFile  *os.File
	recEnc    *json.Encoder
	eventEnc  *json.Encoder
	histEnc   *json.Encoder
}

// NewFileWriter creates a FileWriter. eventsPath or historyPath may be empty
// to skip those logs.
func NewFileWriter(recordsPath, eventsPath, historyPath string) (*FileWriter, error) {
	rf, err := os.Create(recordsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{recFile: rf, recEnc: json.NewEncoder(rf)}
	if eventsPath != "" {
		ef, err := os.Create(eventsPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if historyPath != "" {
		hf, err := os.Create(historyPath)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.histFile = hf
		fw.histEnc = json.NewEncoder(hf)
	}
	return fw, nil
}

// Write logs a single record.
func (f *FileWriter) Write(r telemetry.LatencyRecord) error {
	return f.recEnc.Encode(r)
}

// WriteBatch logs multiple records.
func (f *FileWriter) WriteBatch(recs []telemetry.LatencyRecord) error {
	for _, r := range recs {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs a single network event, if enabled.
func (f *FileWriter) WriteEvent(e telemetry.NetworkEvent) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(e)
}

// WriteHistory logs historical points, if enabled.
func (f *FileWriter) WriteHistory(pts []telemetry.HistoricalPoint) error {
	if f.histEnc == nil {
		return nil
	}
	for _, p := range pts {
		if err := f.histEnc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, file := range []*os.File{f.recFile, f.eventFile, f.histFile} {
		if file == nil {
			continue
		}
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

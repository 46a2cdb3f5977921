package sim

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"exchange-latency-sim/internal/telemetry"
)

// ReplayLog replays records from r to writer. A speed >0 accelerates playback.
// If speed <= 0, no artificial delay is inserted. Records sharing a timestamp
// belong to one snapshot and are written back to back.
func ReplayLog(r io.Reader, writer RecordWriter, speed float64) error {
	return ReplayLogContext(context.Background(), r, writer, speed)
}

// ReplayLogContext is ReplayLog with cancellation between records.
func ReplayLogContext(ctx context.Context, r io.Reader, writer RecordWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var rec telemetry.LatencyRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := rec.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				timer := time.NewTimer(diff)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
		prev = rec.Timestamp
	}
}

// ReplayLogFile opens a file and replays its records.
func ReplayLogFile(ctx context.Context, path string, writer RecordWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLogContext(ctx, f, writer, speed)
}

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"exchange-latency-sim/internal/config"
	"exchange-latency-sim/internal/sim"
	"exchange-latency-sim/internal/telemetry"
)

func notTerminal() bool { return false }

func TestNewWritersPrintOnly(t *testing.T) {
	w, tui, cleanup, err := newWriters(writerOptions{
		printOnly:  true,
		greptime:   config.GreptimeConfig{Endpoint: "localhost:4001", Database: "public"},
		isTerminal: notTerminal,
	})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
	if tui != nil {
		t.Fatalf("expected no TUI writer")
	}
}

func TestNewWritersTerminalUsesColor(t *testing.T) {
	w, _, cleanup, err := newWriters(writerOptions{isTerminal: func() bool { return true }})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", w)
	}
}

func TestNewWritersPrintOnlyIgnoresTerminal(t *testing.T) {
	w, _, cleanup, err := newWriters(writerOptions{printOnly: true, isTerminal: func() bool { return true }})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", w)
	}
}

func TestNewWritersGreptime(t *testing.T) {
	w, _, cleanup, err := newWriters(writerOptions{
		greptime:   config.GreptimeConfig{Endpoint: "localhost:4001", Database: "public"},
		isTerminal: notTerminal,
	})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.GreptimeDBWriter); !ok {
		t.Fatalf("expected *sim.GreptimeDBWriter, got %T", w)
	}
}

func TestNewWritersBadEndpoint(t *testing.T) {
	_, _, _, err := newWriters(writerOptions{
		greptime:   config.GreptimeConfig{Endpoint: "localhost:notaport"},
		isTerminal: notTerminal,
	})
	if err == nil {
		t.Fatalf("expected error for bad endpoint")
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latency.log")
	w, _, cleanup, err := newWriters(writerOptions{printOnly: true, logFile: path, isTerminal: notTerminal})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", w)
	}
	now := time.Now()
	rec := telemetry.LatencyRecord{From: "a", To: "b", Latency: 42, Status: telemetry.StatusLow, Timestamp: now}
	if err := w.Write(rec); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	ev := telemetry.NetworkEvent{ID: "e1", Type: telemetry.EventOutage, Severity: telemetry.SeverityHigh, AffectedIDs: []string{"a"}, StartTime: now}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("write event failed: %v", err)
	}
	hw, ok := w.(sim.HistoryWriter)
	if !ok {
		t.Fatalf("writer does not implement HistoryWriter")
	}
	pts := []telemetry.HistoricalPoint{{Timestamp: now, PairKey: "a-b", Latency: 40}}
	if err := hw.WriteHistory(pts); err != nil {
		t.Fatalf("write history failed: %v", err)
	}
	for _, p := range []string{path, path + ".events", path + ".history"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s failed: %v", p, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

func TestNewHistoryWriter(t *testing.T) {
	hw, cleanup, err := newHistoryWriter(writerOptions{tui: true})
	if err != nil {
		t.Fatalf("newHistoryWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := hw.(*sim.JSONStdoutWriter); !ok {
		t.Fatalf("expected *sim.JSONStdoutWriter, got %T", hw)
	}
}

package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"exchange-latency-sim/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
	calls int
	err   error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.calls++
	if len(tables) > 0 {
		m.table = tables[0]
	}
	if m.err != nil {
		return nil, m.err
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterRecords(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, latencyTable: "exchange_latency"}

	rec := telemetry.LatencyRecord{
		From:       "binance-tokyo",
		To:         "aws-ap-northeast-1",
		Latency:    12.5,
		Status:     telemetry.StatusLow,
		PacketLoss: telemetry.Float(0.3),
		Timestamp:  time.Unix(100, 0).UTC(),
	}
	if err := w.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 8 {
		t.Fatalf("schema length = %d, want 8", len(schema))
	}
	if schema[0].ColumnName != "from_id" || schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("first column = %s/%v, want from_id TAG", schema[0].ColumnName, schema[0].SemanticType)
	}
	if schema[2].Datatype != gpb.ColumnDataType_FLOAT64 {
		t.Fatalf("latency column type = %v, want FLOAT64", schema[2].Datatype)
	}

	row := m.table.GetRows().Rows[0]
	if got := row.Values[1].GetStringValue(); got != "aws-ap-northeast-1" {
		t.Fatalf("to_id = %s", got)
	}
	if got := row.Values[2].GetF64Value(); got != 12.5 {
		t.Fatalf("latency = %v, want 12.5", got)
	}
	if got := row.Values[4].GetF64Value(); got != 0.3 {
		t.Fatalf("packet_loss = %v, want 0.3", got)
	}
	if got := row.Values[5].GetF64Value(); got != 0 {
		t.Fatalf("missing jitter = %v, want 0", got)
	}
}

func TestGreptimeWriterEmptyBatchSkipsWrite(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, latencyTable: "l", eventTable: "e", historyTable: "h"}
	if err := w.WriteBatch(nil); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if err := w.WriteEvents(nil); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if err := w.WriteHistory(nil); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	if m.calls != 0 {
		t.Fatalf("client called %d times, want 0", m.calls)
	}
}

func TestGreptimeWriterEvents(t *testing.T) {
	start := time.Unix(0, 0).UTC()
	end := start.Add(time.Hour)
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, eventTable: "network_events"}

	ev := telemetry.NetworkEvent{
		ID:          "evt-1",
		Type:        telemetry.EventOutage,
		AffectedIDs: []string{"okx-hk", "bybit-sg"},
		StartTime:   start,
		EndTime:     &end,
		Severity:    telemetry.SeverityHigh,
		Description: "outage",
	}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	row := m.table.GetRows().Rows[0]
	if got := row.Values[3].GetStringValue(); got != "okx-hk,bybit-sg" {
		t.Fatalf("affected = %s", got)
	}
	if got := row.Values[5].GetI64Value(); got != end.UnixMilli() {
		t.Fatalf("end_ms = %d, want %d", got, end.UnixMilli())
	}
}

func TestGreptimeWriterHistory(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, historyTable: "exchange_latency_history"}

	pts := []telemetry.HistoricalPoint{
		{Timestamp: time.Unix(0, 0), PairKey: "a-b", Latency: 40, PacketLoss: 0.2, Jitter: 3, Volume: telemetry.Float(1200)},
		{Timestamp: time.Unix(60, 0), PairKey: "a-b", Latency: 42, PacketLoss: 0.1, Jitter: 2},
	}
	if err := w.WriteHistory(pts); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	rows := m.table.GetRows().Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := rows[0].Values[4].GetF64Value(); got != 1200 {
		t.Fatalf("volume = %v, want 1200", got)
	}
	if got := rows[1].Values[4].GetF64Value(); got != 0 {
		t.Fatalf("missing volume = %v, want 0", got)
	}
}

func TestGreptimeWriterPropagatesError(t *testing.T) {
	m := &mockGreptimeClient{err: errors.New("unavailable")}
	w := &GreptimeDBWriter{client: m, latencyTable: "l"}
	if err := w.Write(telemetry.LatencyRecord{From: "a", To: "b", Timestamp: time.Now()}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSplitEndpoint(t *testing.T) {
	host, port, err := splitEndpoint("greptimedb:4001")
	if err != nil || host != "greptimedb" || port != 4001 {
		t.Fatalf("splitEndpoint = %s %d %v", host, port, err)
	}
	host, port, err = splitEndpoint("localhost")
	if err != nil || host != "localhost" || port != defaultGreptimePort {
		t.Fatalf("splitEndpoint default = %s %d %v", host, port, err)
	}
	if _, _, err := splitEndpoint(""); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
	if _, _, err := splitEndpoint("host:abc"); err == nil {
		t.Fatalf("expected error for bad port")
	}
}

package sim

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"exchange-latency-sim/internal/telemetry"
)

// defaultGreptimePort is the GreptimeDB gRPC port.
const defaultGreptimePort = 4001

// greptimeClient is the subset of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes records, events and history to GreptimeDB via the
// ingester client.
type GreptimeDBWriter struct {
	client       greptimeClient
	latencyTable string
	historyTable string
	eventTable   string
	timeout      time.Duration
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port") and
// writes into database. Tables are created on first write.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptimedb client: %w", err)
	}
	return &GreptimeDBWriter{
		client:       client,
		latencyTable: telemetry.LatencyTableName,
		historyTable: telemetry.HistoryTableName,
		eventTable:   telemetry.EventTableName,
		timeout:      10 * time.Second,
	}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "grpc://")
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptimedb endpoint is empty")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("greptimedb endpoint %q: bad port: %w", endpoint, err)
	}
	return host, port, nil
}

func (w *GreptimeDBWriter) write(tbl *table.Table) error {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	_, err := w.client.Write(ctx, tbl)
	return err
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Write inserts a single record.
func (w *GreptimeDBWriter) Write(r telemetry.LatencyRecord) error {
	return w.WriteBatch([]telemetry.LatencyRecord{r})
}

// WriteBatch inserts multiple records.
func (w *GreptimeDBWriter) WriteBatch(recs []telemetry.LatencyRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tbl, err := table.New(w.latencyTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("from_id", types.STRING)
	tbl.AddTagColumn("to_id", types.STRING)
	tbl.AddFieldColumn("latency_ms", types.FLOAT64)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddFieldColumn("packet_loss", types.FLOAT64)
	tbl.AddFieldColumn("jitter_ms", types.FLOAT64)
	tbl.AddFieldColumn("route_points", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range recs {
		if err := tbl.AddRow(r.From, r.To, r.Latency, string(r.Status), orZero(r.PacketLoss), orZero(r.Jitter), int64(len(r.Route)), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl)
}

// WriteEvent inserts a single network event.
func (w *GreptimeDBWriter) WriteEvent(e telemetry.NetworkEvent) error {
	return w.WriteEvents([]telemetry.NetworkEvent{e})
}

// WriteEvents inserts multiple network events. Ongoing events store an
// end_ms of zero.
func (w *GreptimeDBWriter) WriteEvents(evs []telemetry.NetworkEvent) error {
	if len(evs) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("event_id", types.STRING)
	tbl.AddFieldColumn("type", types.STRING)
	tbl.AddFieldColumn("severity", types.STRING)
	tbl.AddFieldColumn("affected", types.STRING)
	tbl.AddFieldColumn("description", types.STRING)
	tbl.AddFieldColumn("end_ms", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, e := range evs {
		var end int64
		if e.EndTime != nil {
			end = e.EndTime.UnixMilli()
		}
		if err := tbl.AddRow(e.ID, string(e.Type), string(e.Severity), strings.Join(e.AffectedIDs, ","), e.Description, end, e.StartTime); err != nil {
			return err
		}
	}
	return w.write(tbl)
}

// WriteHistory inserts historical points.
func (w *GreptimeDBWriter) WriteHistory(pts []telemetry.HistoricalPoint) error {
	if len(pts) == 0 {
		return nil
	}
	tbl, err := table.New(w.historyTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("pair", types.STRING)
	tbl.AddFieldColumn("latency_ms", types.FLOAT64)
	tbl.AddFieldColumn("packet_loss", types.FLOAT64)
	tbl.AddFieldColumn("jitter_ms", types.FLOAT64)
	tbl.AddFieldColumn("volume", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, p := range pts {
		if err := tbl.AddRow(p.PairKey, p.Latency, p.PacketLoss, p.Jitter, orZero(p.Volume), p.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl)
}

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/config"
	"exchange-latency-sim/internal/sim"
)

// sink receives records and incidents. Every base writer satisfies it.
type sink interface {
	sim.RecordWriter
	sim.EventWriter
}

// writerOptions selects the sinks built by newWriters.
type writerOptions struct {
	printOnly bool
	tui       bool
	logFile   string
	greptime  config.GreptimeConfig
	exchanges []catalog.Exchange
	// isTerminal reports whether stdout is interactive. Nil uses x/term.
	isTerminal func() bool
}

func stdoutIsTerminal() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// newWriters sets up the record and event sinks based on flags and config.
// It returns the sink, the TUI when one was started and a cleanup function to
// close any resources.
func newWriters(opts writerOptions) (sink, *sim.TUIWriter, func(), error) {
	cleanup := func() {}

	base, closeBase, err := baseWriter(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	tui, _ := base.(*sim.TUIWriter)
	if opts.logFile == "" {
		return base, tui, closeBase, nil
	}

	fw, err := sim.NewFileWriter(opts.logFile, opts.logFile+".events", opts.logFile+".history")
	if err != nil {
		closeBase()
		return nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(base, fw)
	cleanup = func() {
		fw.Close()
		closeBase()
	}
	return mw, tui, cleanup, nil
}

// baseWriter chooses the primary sink: the TUI, GreptimeDB when an endpoint is
// configured, or STDOUT coloured for terminals and JSON otherwise.
func baseWriter(opts writerOptions) (sink, func(), error) {
	noop := func() {}
	if opts.tui {
		w := sim.NewTUIWriter(opts.exchanges)
		return w, func() { w.Close() }, nil
	}
	if !opts.printOnly && opts.greptime.Endpoint != "" {
		w, err := sim.NewGreptimeDBWriter(opts.greptime.Endpoint, opts.greptime.Database)
		if err != nil {
			return nil, nil, err
		}
		return w, noop, nil
	}
	isTerminal := opts.isTerminal
	if isTerminal == nil {
		isTerminal = stdoutIsTerminal
	}
	if !opts.printOnly && isTerminal() {
		return sim.NewColorStdoutWriter(opts.exchanges), noop, nil
	}
	return sim.NewJSONStdoutWriter(), noop, nil
}

// newHistoryWriter returns a sink for generated series: GreptimeDB or JSON
// lines, plus the log file when one is set.
func newHistoryWriter(opts writerOptions) (sim.HistoryWriter, func(), error) {
	opts.tui = false
	opts.isTerminal = func() bool { return false }
	w, _, cleanup, err := newWriters(opts)
	if err != nil {
		return nil, nil, err
	}
	hw, ok := w.(sim.HistoryWriter)
	if !ok {
		cleanup()
		return nil, nil, fmt.Errorf("%T cannot store history", w)
	}
	return hw, cleanup, nil
}

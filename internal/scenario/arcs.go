package scenario

import "exchange-latency-sim/internal/telemetry"

// BuiltIn returns the predefined presets.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"global": {
			Name:        "Global",
			Description: "Every exchange in the catalog, no scripted incidents.",
		},
		"popular-pairs": {
			Name:        "Popular Pairs",
			Description: "Exchanges behind the most watched trading routes.",
			Exchanges: []string{
				"binance-singapore", "coinbase-sanfrancisco", "okx-hongkong",
				"kraken-london", "bybit-tokyo", "deribit-amsterdam",
				"coinbase-newyork", "bitfinex-london",
			},
			Pairs: []string{
				"binance-singapore-coinbase-sanfrancisco",
				"okx-hongkong-kraken-london",
				"bybit-tokyo-deribit-amsterdam",
				"binance-singapore-okx-hongkong",
				"coinbase-newyork-bitfinex-london",
			},
		},
		"asia-congestion": {
			Name:        "Asia Congestion",
			Description: "Congestion builds across the Asian venues and clears again.",
			Exchanges: []string{
				"binance-singapore", "binance-tokyo", "bybit-singapore",
				"bybit-tokyo", "okx-hongkong", "kraken-london",
			},
			Pairs: []string{
				"binance-singapore-okx-hongkong",
				"bybit-tokyo-binance-singapore",
				"okx-hongkong-kraken-london",
			},
			Phases: []Phase{
				{
					Name:        "baseline",
					Description: "Normal trading conditions.",
					Triggers:    []Trigger{{Event: EventTicks, Value: 3, Next: "building"}},
				},
				{
					Name:        "building",
					Description: "Order flow surges in Singapore.",
					Incidents: []Incident{
						{Type: telemetry.EventCongestion, Severity: telemetry.SeverityMedium, Targets: []string{"binance-singapore", "bybit-singapore"}},
					},
					Triggers: []Trigger{{Event: EventTicks, Value: 3, Next: "peak"}},
				},
				{
					Name:        "peak",
					Description: "Congestion spreads to Tokyo and Hong Kong.",
					Incidents: []Incident{
						{Type: telemetry.EventCongestion, Severity: telemetry.SeverityHigh, Targets: []string{"binance-singapore", "bybit-singapore"}},
						{Type: telemetry.EventCongestion, Severity: telemetry.SeverityMedium, Targets: []string{"bybit-tokyo", "okx-hongkong"}},
					},
					Triggers: []Trigger{{Event: EventTicks, Value: 4, Next: "recovery"}},
				},
				{
					Name:        "recovery",
					Description: "Traffic normalises.",
					Triggers:    []Trigger{{Event: EventTicks, Value: 3, Next: "baseline"}},
				},
			},
		},
		"exchange-outage": {
			Name:        "Exchange Outage",
			Description: "A scheduled maintenance overruns into an outage.",
			Exchanges: []string{
				"coinbase-sanfrancisco", "coinbase-newyork", "kraken-london",
				"bitfinex-london", "deribit-amsterdam",
			},
			Phases: []Phase{
				{
					Name:        "maintenance",
					Description: "Coinbase San Francisco enters its maintenance window.",
					Incidents: []Incident{
						{Type: telemetry.EventMaintenance, Severity: telemetry.SeverityLow, Targets: []string{"coinbase-sanfrancisco"}},
					},
					Triggers: []Trigger{{Event: EventTicks, Value: 4, Next: "outage"}},
				},
				{
					Name:        "outage",
					Description: "The window overruns and the venue goes dark.",
					Incidents: []Incident{
						{Type: telemetry.EventOutage, Severity: telemetry.SeverityHigh, Targets: []string{"coinbase-sanfrancisco"}},
						{Type: telemetry.EventCongestion, Severity: telemetry.SeverityLow, Targets: []string{"coinbase-newyork"}},
					},
					Triggers: []Trigger{{Event: EventTicks, Value: 4, Next: "restored"}},
				},
				{
					Name:        "restored",
					Description: "Service is restored.",
				},
			},
		},
	}
}

// Names returns the built-in preset names.
func Names() []string {
	return []string{"asia-congestion", "exchange-outage", "global", "popular-pairs"}
}

// Resolve returns the built-in preset called name or loads a YAML file.
func Resolve(nameOrPath string) (*Scenario, error) {
	if sc, ok := BuiltIn()[nameOrPath]; ok {
		return &sc, nil
	}
	return Load(nameOrPath)
}

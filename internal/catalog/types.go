// Package catalog holds the static exchange and cloud region reference data.
package catalog

import "exchange-latency-sim/internal/geo"

// Provider identifies a cloud provider hosting an exchange or region.
type Provider string

const (
	ProviderAWS   Provider = "AWS"
	ProviderGCP   Provider = "GCP"
	ProviderAzure Provider = "Azure"
)

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderAWS, ProviderGCP, ProviderAzure}

// Status is the operational state of an exchange.
type Status string

const (
	StatusOnline      Status = "online"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

// Location is a coordinate with a human readable place name.
type Location struct {
	geo.Coordinate
	City    string `json:"city"`
	Country string `json:"country"`
}

// Exchange is a trading venue hosted in a cloud region.
type Exchange struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Location      Location `json:"location"`
	CloudProvider Provider `json:"cloudProvider"`
	Region        string   `json:"region"`
	Status        Status   `json:"status"`
	ServerCount   int      `json:"serverCount"`
	Capacity      float64  `json:"capacity"`
}

// CloudRegion is a provider data center region.
type CloudRegion struct {
	ID          string         `json:"id"`
	Provider    Provider       `json:"provider"`
	Name        string         `json:"name"`
	Code        string         `json:"code"`
	Location    geo.Coordinate `json:"location"`
	ServerCount int            `json:"serverCount"`
	Capacity    float64        `json:"capacity"`
	Exchanges   []string       `json:"exchanges"`
}

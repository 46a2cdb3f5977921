package catalog

import "exchange-latency-sim/internal/geo"

func loc(lat, lng float64, city, country string) Location {
	return Location{Coordinate: geo.Coordinate{Lat: lat, Lng: lng}, City: city, Country: country}
}

var exchanges = []Exchange{
	{ID: "binance-singapore", Name: "Binance", Location: loc(1.3521, 103.8198, "Singapore", "Singapore"), CloudProvider: ProviderAWS, Region: "ap-southeast-1", Status: StatusOnline, ServerCount: 150, Capacity: 95},
	{ID: "binance-tokyo", Name: "Binance", Location: loc(35.6762, 139.6503, "Tokyo", "Japan"), CloudProvider: ProviderAWS, Region: "ap-northeast-1", Status: StatusOnline, ServerCount: 120, Capacity: 88},
	{ID: "okx-hongkong", Name: "OKX", Location: loc(22.3193, 114.1694, "Hong Kong", "Hong Kong"), CloudProvider: ProviderGCP, Region: "asia-east1", Status: StatusOnline, ServerCount: 80, Capacity: 92},
	{ID: "okx-singapore", Name: "OKX", Location: loc(1.3521, 103.8198, "Singapore", "Singapore"), CloudProvider: ProviderGCP, Region: "asia-southeast1", Status: StatusOnline, ServerCount: 75, Capacity: 85},
	{ID: "deribit-amsterdam", Name: "Deribit", Location: loc(52.3676, 4.9041, "Amsterdam", "Netherlands"), CloudProvider: ProviderAzure, Region: "europe-west", Status: StatusOnline, ServerCount: 45, Capacity: 78},
	{ID: "bybit-singapore", Name: "Bybit", Location: loc(1.3521, 103.8198, "Singapore", "Singapore"), CloudProvider: ProviderAWS, Region: "ap-southeast-1", Status: StatusOnline, ServerCount: 90, Capacity: 91},
	{ID: "bybit-tokyo", Name: "Bybit", Location: loc(35.6762, 139.6503, "Tokyo", "Japan"), CloudProvider: ProviderAWS, Region: "ap-northeast-1", Status: StatusOnline, ServerCount: 85, Capacity: 87},
	{ID: "coinbase-sanfrancisco", Name: "Coinbase", Location: loc(37.7749, -122.4194, "San Francisco", "United States"), CloudProvider: ProviderGCP, Region: "us-west1", Status: StatusOnline, ServerCount: 200, Capacity: 96},
	{ID: "coinbase-newyork", Name: "Coinbase", Location: loc(40.7128, -74.0060, "New York", "United States"), CloudProvider: ProviderGCP, Region: "us-east1", Status: StatusOnline, ServerCount: 180, Capacity: 94},
	{ID: "kraken-sanfrancisco", Name: "Kraken", Location: loc(37.7749, -122.4194, "San Francisco", "United States"), CloudProvider: ProviderAzure, Region: "us-west2", Status: StatusOnline, ServerCount: 110, Capacity: 89},
	{ID: "kraken-london", Name: "Kraken", Location: loc(51.5074, -0.1278, "London", "United Kingdom"), CloudProvider: ProviderAzure, Region: "europe-west", Status: StatusOnline, ServerCount: 95, Capacity: 86},
	{ID: "bitfinex-london", Name: "Bitfinex", Location: loc(51.5074, -0.1278, "London", "United Kingdom"), CloudProvider: ProviderAWS, Region: "eu-west-1", Status: StatusOnline, ServerCount: 70, Capacity: 83},
	{ID: "kucoin-singapore", Name: "KuCoin", Location: loc(1.3521, 103.8198, "Singapore", "Singapore"), CloudProvider: ProviderGCP, Region: "asia-southeast1", Status: StatusOnline, ServerCount: 65, Capacity: 81},
}

var regions = []CloudRegion{
	{ID: "aws-us-east-1", Provider: ProviderAWS, Name: "US East (N. Virginia)", Code: "us-east-1", Location: geo.Coordinate{Lat: 38.13, Lng: -78.45}, ServerCount: 500, Capacity: 85, Exchanges: []string{"coinbase-newyork"}},
	{ID: "aws-us-west-2", Provider: ProviderAWS, Name: "US West (Oregon)", Code: "us-west-2", Location: geo.Coordinate{Lat: 45.87, Lng: -119.69}, ServerCount: 450, Capacity: 78, Exchanges: []string{}},
	{ID: "aws-eu-west-1", Provider: ProviderAWS, Name: "Europe (Ireland)", Code: "eu-west-1", Location: geo.Coordinate{Lat: 53.41, Lng: -8.24}, ServerCount: 380, Capacity: 82, Exchanges: []string{"bitfinex-london"}},
	{ID: "aws-ap-southeast-1", Provider: ProviderAWS, Name: "Asia Pacific (Singapore)", Code: "ap-southeast-1", Location: geo.Coordinate{Lat: 1.37, Lng: 103.8}, ServerCount: 420, Capacity: 88, Exchanges: []string{"binance-singapore", "bybit-singapore"}},
	{ID: "aws-ap-northeast-1", Provider: ProviderAWS, Name: "Asia Pacific (Tokyo)", Code: "ap-northeast-1", Location: geo.Coordinate{Lat: 35.41, Lng: 139.42}, ServerCount: 390, Capacity: 86, Exchanges: []string{"binance-tokyo", "bybit-tokyo"}},
	{ID: "gcp-us-central1", Provider: ProviderGCP, Name: "US Central (Iowa)", Code: "us-central1", Location: geo.Coordinate{Lat: 41.26, Lng: -95.86}, ServerCount: 320, Capacity: 75, Exchanges: []string{}},
	{ID: "gcp-us-west1", Provider: ProviderGCP, Name: "US West (Oregon)", Code: "us-west1", Location: geo.Coordinate{Lat: 45.87, Lng: -119.69}, ServerCount: 350, Capacity: 79, Exchanges: []string{"coinbase-sanfrancisco"}},
	{ID: "gcp-europe-west1", Provider: ProviderGCP, Name: "Europe West (Belgium)", Code: "europe-west1", Location: geo.Coordinate{Lat: 50.45, Lng: 4.35}, ServerCount: 290, Capacity: 73, Exchanges: []string{}},
	{ID: "gcp-asia-southeast1", Provider: ProviderGCP, Name: "Asia Southeast (Singapore)", Code: "asia-southeast1", Location: geo.Coordinate{Lat: 1.37, Lng: 103.8}, ServerCount: 310, Capacity: 81, Exchanges: []string{"okx-singapore", "kucoin-singapore"}},
	{ID: "gcp-asia-northeast1", Provider: ProviderGCP, Name: "Asia Northeast (Tokyo)", Code: "asia-northeast1", Location: geo.Coordinate{Lat: 35.41, Lng: 139.42}, ServerCount: 280, Capacity: 77, Exchanges: []string{}},
	{ID: "gcp-asia-east1", Provider: ProviderGCP, Name: "Asia East (Taiwan)", Code: "asia-east1", Location: geo.Coordinate{Lat: 25.0330, Lng: 121.5654}, ServerCount: 260, Capacity: 74, Exchanges: []string{"okx-hongkong"}},
	{ID: "azure-east-us", Provider: ProviderAzure, Name: "East US (Virginia)", Code: "eastus", Location: geo.Coordinate{Lat: 38.13, Lng: -78.45}, ServerCount: 400, Capacity: 83, Exchanges: []string{}},
	{ID: "azure-west-us-2", Provider: ProviderAzure, Name: "West US 2 (Washington)", Code: "westus2", Location: geo.Coordinate{Lat: 47.233, Lng: -119.852}, ServerCount: 370, Capacity: 80, Exchanges: []string{"kraken-sanfrancisco"}},
	{ID: "azure-west-europe", Provider: ProviderAzure, Name: "West Europe (Netherlands)", Code: "westeurope", Location: geo.Coordinate{Lat: 52.37, Lng: 4.89}, ServerCount: 340, Capacity: 85, Exchanges: []string{"deribit-amsterdam", "kraken-london"}},
	{ID: "azure-southeast-asia", Provider: ProviderAzure, Name: "Southeast Asia (Singapore)", Code: "southeastasia", Location: geo.Coordinate{Lat: 1.37, Lng: 103.8}, ServerCount: 300, Capacity: 78, Exchanges: []string{}},
	{ID: "azure-japan-east", Provider: ProviderAzure, Name: "Japan East (Tokyo)", Code: "japaneast", Location: geo.Coordinate{Lat: 35.41, Lng: 139.42}, ServerCount: 270, Capacity: 76, Exchanges: []string{}},
}

// Exchanges returns a copy of the built-in exchange table.
func Exchanges() []Exchange {
	out := make([]Exchange, len(exchanges))
	copy(out, exchanges)
	return out
}

// Regions returns a copy of the built-in cloud region table.
func Regions() []CloudRegion {
	out := make([]CloudRegion, len(regions))
	for i, r := range regions {
		ids := make([]string, len(r.Exchanges))
		copy(ids, r.Exchanges)
		r.Exchanges = ids
		out[i] = r
	}
	return out
}

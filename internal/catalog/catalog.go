package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biter777/countries"
)

// Catalog is an immutable, indexed view over exchanges and regions.
type Catalog struct {
	exchanges []Exchange
	regions   []CloudRegion
	byID      map[string]Exchange
	regionIDs map[string]CloudRegion
}

// New indexes the given tables. Later duplicates of an id are ignored.
func New(exs []Exchange, rgs []CloudRegion) *Catalog {
	c := &Catalog{
		byID:      make(map[string]Exchange, len(exs)),
		regionIDs: make(map[string]CloudRegion, len(rgs)),
	}
	for _, e := range exs {
		if _, dup := c.byID[e.ID]; dup {
			continue
		}
		c.byID[e.ID] = e
		c.exchanges = append(c.exchanges, e)
	}
	for _, r := range rgs {
		if _, dup := c.regionIDs[r.ID]; dup {
			continue
		}
		c.regionIDs[r.ID] = r
		c.regions = append(c.regions, r)
	}
	return c
}

// Default returns a catalog over the built-in tables.
func Default() *Catalog {
	return New(Exchanges(), Regions())
}

// Exchanges returns the exchanges in table order.
func (c *Catalog) Exchanges() []Exchange {
	return append([]Exchange(nil), c.exchanges...)
}

// Regions returns the regions in table order.
func (c *Catalog) Regions() []CloudRegion {
	return append([]CloudRegion(nil), c.regions...)
}

// ExchangeByID looks up an exchange.
func (c *Catalog) ExchangeByID(id string) (Exchange, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// ExchangesByProvider filters exchanges hosted on provider.
func (c *Catalog) ExchangesByProvider(p Provider) []Exchange {
	var out []Exchange
	for _, e := range c.exchanges {
		if e.CloudProvider == p {
			out = append(out, e)
		}
	}
	return out
}

// ExchangesByRegion filters exchanges by region code.
func (c *Catalog) ExchangesByRegion(code string) []Exchange {
	var out []Exchange
	for _, e := range c.exchanges {
		if e.Region == code {
			out = append(out, e)
		}
	}
	return out
}

// RegionByID looks up a region by id.
func (c *Catalog) RegionByID(id string) (CloudRegion, bool) {
	r, ok := c.regionIDs[id]
	return r, ok
}

// RegionByCode looks up a region by its provider code.
func (c *Catalog) RegionByCode(code string) (CloudRegion, bool) {
	for _, r := range c.regions {
		if r.Code == code {
			return r, true
		}
	}
	return CloudRegion{}, false
}

// RegionsByProvider filters regions by provider.
func (c *Catalog) RegionsByProvider(p Provider) []CloudRegion {
	var out []CloudRegion
	for _, r := range c.regions {
		if r.Provider == p {
			out = append(out, r)
		}
	}
	return out
}

// Has reports whether id names a known exchange or region.
func (c *Catalog) Has(id string) bool {
	if _, ok := c.byID[id]; ok {
		return true
	}
	_, ok := c.regionIDs[id]
	return ok
}

// SplitPair splits a "from-to" pair key into two known entity ids. Ids may
// themselves contain dashes, so every split point is tried.
func (c *Catalog) SplitPair(key string) (string, string, bool) {
	for i := strings.IndexByte(key, '-'); i >= 0; {
		from, to := key[:i], key[i+1:]
		if c.Has(from) && c.Has(to) {
			return from, to, true
		}
		next := strings.IndexByte(key[i+1:], '-')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return "", "", false
}

// Subset returns a catalog restricted to the given exchange ids. Regions are
// kept in full.
func (c *Catalog) Subset(ids []string) (*Catalog, error) {
	exs := make([]Exchange, 0, len(ids))
	for _, id := range ids {
		e, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown exchange %q", id)
		}
		exs = append(exs, e)
	}
	return New(exs, c.regions), nil
}

// CountryCode returns the ISO 3166-1 alpha-2 code for a country name, or ""
// when the name is not recognised.
func CountryCode(name string) string {
	cc := countries.ByName(name)
	if cc == countries.Unknown {
		return ""
	}
	return cc.Alpha2()
}

type tableFile struct {
	Exchanges []Exchange    `json:"exchanges"`
	Regions   []CloudRegion `json:"regions"`
}

// Decode reads a JSON document of the form {"exchanges": [...], "regions": [...]}.
func Decode(r io.Reader) ([]Exchange, []CloudRegion, error) {
	var tf tableFile
	if err := json.NewDecoder(r).Decode(&tf); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}
	return tf.Exchanges, tf.Regions, nil
}

// LoadFile reads exchange and region tables from a JSON file.
func LoadFile(path string) ([]Exchange, []CloudRegion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

package catalog

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimezone is the zone all CPT deadlines are interpreted in when the
// catalog file does not override it.
const DefaultTimezone = "America/Sao_Paulo"

// Category identifies one of the three alert categories a CPT column is
// evaluated against.
type Category string

const (
	CategoryDefault  Category = "default"
	CategoryPriority Category = "priority"
	CategoryExpedite Category = "expedite"
)

// Categories lists all alert categories in evaluation order.
var Categories = []Category{CategoryDefault, CategoryPriority, CategoryExpedite}

// Label returns the category name as it appears in operator-facing messages.
func (c Category) Label() string {
	return strings.ToUpper(string(c))
}

// Band is an inclusive [Lower, Upper] range for a metric expressed as a
// percentage. Values at or above Upper are "active", at or below Lower are
// "inactive".
type Band struct {
	Lower float64
	Upper float64
}

// ParseBand parses the "lower-upper" form used in catalog files, e.g. "90-95".
func ParseBand(s string) (Band, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Band{}, fmt.Errorf("catalog: band %q: want \"lower-upper\"", s)
	}
	lower, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return Band{}, fmt.Errorf("catalog: band %q: lower bound: %w", s, err)
	}
	upper, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return Band{}, fmt.Errorf("catalog: band %q: upper bound: %w", s, err)
	}
	if lower > upper {
		return Band{}, fmt.Errorf("catalog: band %q: lower bound exceeds upper", s)
	}
	return Band{Lower: lower, Upper: upper}, nil
}

// String renders the band back in its catalog-file form.
func (b Band) String() string {
	return fmt.Sprintf("%s-%s",
		strconv.FormatFloat(b.Lower, 'f', -1, 64),
		strconv.FormatFloat(b.Upper, 'f', -1, 64))
}

// UnmarshalYAML accepts the "90-95" string form.
func (b *Band) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseBand(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalYAML renders the band in its "lower-upper" string form.
func (b Band) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// SLAProfile pairs a utilization band with the lead time (hours before the
// CPT deadline) at which evaluating that band becomes meaningful.
type SLAProfile struct {
	Band          Band    `yaml:"band"`
	LeadTimeHours float64 `yaml:"lead_time_hours"`
}

// FacilityProfile is the full threshold configuration for one fulfillment
// center.
type FacilityProfile struct {
	// Aggregated facilities expose a single combined CPT risk table instead
	// of separate singles/multis tables.
	Aggregated bool `yaml:"aggregated"`

	Default  SLAProfile `yaml:"default"`
	Priority SLAProfile `yaml:"priority"`
	Expedite SLAProfile `yaml:"expedite"`

	// WIPMin/WIPMax scale a throughput reference into the acceptable WIP band:
	// [reference*WIPMin, reference*WIPMax].
	WIPMin float64 `yaml:"wip_min_multiplier"`
	WIPMax float64 `yaml:"wip_max_multiplier"`

	// Buffer is the acceptable rebin buffer utilization band, in percent.
	Buffer Band `yaml:"buffer_band"`
}

// SLA returns the profile for the given alert category.
func (p FacilityProfile) SLA(c Category) SLAProfile {
	switch c {
	case CategoryPriority:
		return p.Priority
	case CategoryExpedite:
		return p.Expedite
	default:
		return p.Default
	}
}

// Catalog is the read-only facility threshold catalog. It is safe for
// concurrent use: nothing mutates it after construction.
type Catalog struct {
	loc        *time.Location
	facilities map[string]FacilityProfile
}

// catalogFile is the YAML shape of a catalog override file.
type catalogFile struct {
	Timezone   string                     `yaml:"timezone"`
	Facilities map[string]FacilityProfile `yaml:"facilities"`
}

// Builtin returns the catalog shipped with the binary: the BR network
// threshold sheet as of the last ops review. A YAML file loaded with Load
// replaces it wholesale.
func Builtin() *Catalog {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		// The IANA name is a compile-time constant; a missing tzdata bundle is
		// the only way this fails.
		panic(fmt.Sprintf("catalog: load timezone %s: %v", DefaultTimezone, err))
	}
	return &Catalog{loc: loc, facilities: builtinFacilities()}
}

// Load reads a catalog YAML file. The file fully replaces the builtin table;
// there is no per-facility merging.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	if len(cf.Facilities) == 0 {
		return nil, fmt.Errorf("catalog: no facilities defined in %s", path)
	}

	tz := cf.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("catalog: timezone %q: %w", tz, err)
	}

	for id, p := range cf.Facilities {
		if err := validateProfile(id, p); err != nil {
			return nil, err
		}
	}

	return &Catalog{loc: loc, facilities: cf.Facilities}, nil
}

// validateProfile checks the structural invariants of one facility entry.
func validateProfile(id string, p FacilityProfile) error {
	for _, c := range Categories {
		sla := p.SLA(c)
		if sla.LeadTimeHours < 0 {
			return fmt.Errorf("catalog: %s %s: negative lead time", id, c)
		}
	}
	if p.WIPMin < 0 || p.WIPMax < 0 {
		return fmt.Errorf("catalog: %s: negative WIP multiplier", id)
	}
	if p.WIPMin > p.WIPMax {
		return fmt.Errorf("catalog: %s: wip_min_multiplier exceeds wip_max_multiplier", id)
	}
	return nil
}

// Profile returns the threshold profile for a facility and whether the
// facility exists in the catalog. The returned value is a copy.
func (c *Catalog) Profile(facility string) (FacilityProfile, bool) {
	p, ok := c.facilities[facility]
	return p, ok
}

// Facilities returns all facility IDs in the catalog, sorted.
func (c *Catalog) Facilities() []string {
	out := make([]string, 0, len(c.facilities))
	for id := range c.facilities {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Location returns the timezone CPT deadlines are interpreted in.
func (c *Catalog) Location() *time.Location {
	return c.loc
}

// builtinFacilities is the shipped threshold table. Bands are utilization
// percentages; lead times are hours before the CPT deadline.
func builtinFacilities() map[string]FacilityProfile {
	band := func(s string) Band {
		b, err := ParseBand(s)
		if err != nil {
			panic(err)
		}
		return b
	}
	sla := func(s string, hours float64) SLAProfile {
		return SLAProfile{Band: band(s), LeadTimeHours: hours}
	}

	return map[string]FacilityProfile{
		"BSB1": {
			Default:  sla("90-95", 1.75),
			Priority: sla("90-95", 1.75),
			Expedite: sla("175-180", 1),
			WIPMin:   1.5, WIPMax: 1.8,
			Buffer: band("80-90"),
		},
		"CNF1": {
			Default:  sla("90-95", 3),
			Priority: sla("90-95", 3),
			Expedite: sla("195-200", 1),
			WIPMin:   1.5, WIPMax: 2.2,
			Buffer: band("80-90"),
		},
		"FOR2": {
			Default:  sla("90-95", 2),
			Priority: sla("90-95", 2),
			Expedite: sla("185-190", 1),
			WIPMin:   1.5, WIPMax: 1.8,
			Buffer: band("80-90"),
		},
		"GIG1": {
			Default:  sla("90-95", 2),
			Priority: sla("90-95", 2),
			Expedite: sla("195-200", 1.5),
			WIPMin:   1.8, WIPMax: 2.2,
			Buffer: band("80-90"),
		},
		"GIG2": {
			Default:  sla("87-90", 4),
			Priority: sla("90-95", 2),
			Expedite: sla("195-200", 1),
			WIPMin:   1.5, WIPMax: 2.0,
			Buffer: band("80-90"),
		},
		"GRU5": {
			Aggregated: true,
			Default:    sla("90-95", 2.25),
			Priority:   sla("90-95", 2),
			Expedite:   sla("185-190", 1.5),
			WIPMin:     1.8, WIPMax: 2.2,
			Buffer: band("80-90"),
		},
		"GRU8": {
			Default:  sla("90-95", 2),
			Priority: sla("90-95", 2),
			Expedite: sla("195-200", 1),
			WIPMin:   1.0, WIPMax: 1.2,
			Buffer: band("80-90"),
		},
		"GRU9": {
			Default:  sla("90-95", 3.5),
			Priority: sla("90-95", 3.5),
			Expedite: sla("195-200", 1.5),
			WIPMin:   1.8, WIPMax: 2.2,
			Buffer: band("80-90"),
		},
		"POA1": {
			Default:  sla("90-95", 2),
			Priority: sla("90-95", 2),
			Expedite: sla("87-90", 1.5),
			WIPMin:   1.5, WIPMax: 2.0,
			Buffer: band("80-90"),
		},
		"REC1": {
			Default:  sla("87-90", 2),
			Priority: sla("90-95", 2),
			Expedite: sla("87-90", 1),
			WIPMin:   1.5, WIPMax: 2.5,
			Buffer: band("80-90"),
		},
		"REC3": {
			Default:  sla("90-95", 3),
			Priority: sla("90-95", 3),
			Expedite: sla("195-200", 1.5),
			WIPMin:   1.8, WIPMax: 2.2,
			Buffer: band("80-90"),
		},
		"XCV9": {
			Default:  sla("90-95", 3),
			Priority: sla("90-95", 2),
			Expedite: sla("195-200", 1),
			WIPMin:   1.5, WIPMax: 1.8,
			Buffer: band("80-90"),
		},
	}
}

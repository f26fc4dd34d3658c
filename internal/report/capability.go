package report

import (
	"context"
	"sort"
	"time"

	"cooperativa-reports/internal/redisclient"
	"cooperativa-reports/internal/util"

	"go.uber.org/zap"
)

// Source names an entity data source the engine can aggregate over.
type Source string

const (
	SourceSales      Source = "sales"
	SourcePayments   Source = "payments"
	SourceMembers    Source = "members"
	SourceInventory  Source = "inventory"
	SourceProduction Source = "production"
)

// sourceTables maps each source to its backing table. The schema is
// provisioned incrementally, so any of these may be missing.
var sourceTables = map[Source]string{
	SourceSales:      "ventas",
	SourcePayments:   "aportes",
	SourceMembers:    "socios",
	SourceInventory:  "inventario",
	SourceProduction: "produccion",
}

// CapabilitySet is the set of sources confirmed present in the schema.
type CapabilitySet map[Source]bool

// Has reports whether the source's backing table exists.
func (c CapabilitySet) Has(s Source) bool {
	return c[s]
}

// Names returns the available source names, sorted.
func (c CapabilitySet) Names() []string {
	names := make([]string, 0, len(c))
	for s, ok := range c {
		if ok {
			names = append(names, string(s))
		}
	}
	sort.Strings(names)
	return names
}

// Catalog is the schema-introspection collaborator.
type Catalog interface {
	ListTables(ctx context.Context) ([]string, error)
}

// Detector inspects the storage catalog and reports which entity sources
// are available. Detection is fail-safe: if the catalog query itself fails,
// the empty set is returned and every downstream aggregate reports zero
// rather than raising.
type Detector struct {
	catalog Catalog
	cache   *redisclient.Client
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDetector creates a capability detector. cache may be nil; when set,
// the detected table list is cached for ttl since DDL churn is rare.
func NewDetector(catalog Catalog, cache *redisclient.Client, ttl time.Duration) *Detector {
	return &Detector{
		catalog: catalog,
		cache:   cache,
		ttl:     ttl,
		logger:  util.GetLogger(),
	}
}

const capabilityCacheKey = "report:capabilities"

// Detect returns the subset of sources whose backing table exists.
func (d *Detector) Detect(ctx context.Context) CapabilitySet {
	tables, err := d.listTables(ctx)
	if err != nil {
		util.CapabilityDetectionsTotal.WithLabelValues("catalog_error").Inc()
		d.logger.Warn("Capability detection failed, reporting empty set", zap.Error(err))
		return CapabilitySet{}
	}

	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}

	caps := make(CapabilitySet, len(sourceTables))
	for source, table := range sourceTables {
		if present[table] {
			caps[source] = true
		}
	}

	util.CapabilityDetectionsTotal.WithLabelValues("ok").Inc()
	return caps
}

func (d *Detector) listTables(ctx context.Context) ([]string, error) {
	if d.cache != nil {
		var cached []string
		hit, err := d.cache.GetJSON(ctx, capabilityCacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
		// cache miss or cache failure: fall through to the catalog
	}

	tables, err := d.catalog.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.SetJSON(ctx, capabilityCacheKey, tables, d.ttl); err != nil {
			d.logger.Warn("Failed to cache capability set", zap.Error(err))
		}
	}
	return tables, nil
}

package metric

import "github.com/prometheus/client_golang/prometheus"

// CacheSizer reports the number of cached items of one store.
type CacheSizer interface {
	Name() string
	Len() int
}

// StoreCollector exports the current cache size of every store on scrape.
type StoreCollector struct {
	stores []CacheSizer
	desc   *prometheus.Desc
}

// NewStoreCollector creates a collector over the given stores.
func NewStoreCollector(stores ...CacheSizer) *StoreCollector {
	return &StoreCollector{
		stores: stores,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "cached_items"),
			"Items currently held in a store cache",
			[]string{"store"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.stores {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.Len()), s.Name())
	}
}

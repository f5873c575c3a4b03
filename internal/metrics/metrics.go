package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PriceCalculations counts price calculations by outcome
// (ok, lookup_error, dimension_error, bad_request).
var PriceCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "glassquote_price_calculations_total",
	Help: "Price calculations served, by outcome.",
}, []string{"outcome"})

// PriceWarnings counts configuration warnings surfaced in breakdowns.
var PriceWarnings = promauto.NewCounter(prometheus.CounterOpts{
	Name: "glassquote_price_warnings_total",
	Help: "Configuration warnings flagged in price breakdowns.",
})

// CatalogReloads counts snapshot loads from the configuration store.
var CatalogReloads = promauto.NewCounter(prometheus.CounterOpts{
	Name: "glassquote_catalog_reloads_total",
	Help: "Catalog snapshot loads from the configuration store.",
})

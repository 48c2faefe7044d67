package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts checkout submissions by payment method and outcome.
	CheckoutTotal *prometheus.CounterVec
	// CouponValidationTotal counts coupon lookups by outcome.
	CouponValidationTotal *prometheus.CounterVec
	// PointsRedeemedTotal accumulates loyalty points spent at checkout.
	PointsRedeemedTotal prometheus.Counter
	// SalesRecordedTotal tracks background sale persistence outcomes.
	SalesRecordedTotal *prometheus.CounterVec
	// CacheLookupTotal counts cache hits and misses per cache.
	CacheLookupTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers storefront Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout submissions by payment method and result.",
		}, []string{"payment_method", "result"})
		CouponValidationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_validation_total",
			Help:      "Count of coupon validations by result.",
		}, []string{"result"})
		PointsRedeemedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_redeemed_total",
			Help:      "Total loyalty points redeemed at checkout.",
		})
		SalesRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_recorded_total",
			Help:      "Count of sale records written by the worker.",
		}, []string{"result"})
		CacheLookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookup_total",
			Help:      "Cache lookups by cache name and result.",
		}, []string{"cache", "result"})

		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, CouponValidationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CouponValidationTotal = v
			}
		})
		mustRegisterCollector(reg, PointsRedeemedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				PointsRedeemedTotal = v
			}
		})
		mustRegisterCollector(reg, SalesRecordedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SalesRecordedTotal = v
			}
		})
		mustRegisterCollector(reg, CacheLookupTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CacheLookupTotal = v
			}
		})
	})
}

// IncCheckout records a checkout outcome when domain metrics are registered.
func IncCheckout(method, result string) {
	if CheckoutTotal != nil {
		CheckoutTotal.WithLabelValues(method, result).Inc()
	}
}

// IncCouponValidation records a coupon lookup outcome.
func IncCouponValidation(result string) {
	if CouponValidationTotal != nil {
		CouponValidationTotal.WithLabelValues(result).Inc()
	}
}

// AddPointsRedeemed adds redeemed points to the running counter.
func AddPointsRedeemed(points int64) {
	if PointsRedeemedTotal != nil && points > 0 {
		PointsRedeemedTotal.Add(float64(points))
	}
}

// IncSalesRecorded records a sale persistence outcome.
func IncSalesRecorded(result string) {
	if SalesRecordedTotal != nil {
		SalesRecordedTotal.WithLabelValues(result).Inc()
	}
}

// IncCacheLookup records a hit or miss for the named cache.
func IncCacheLookup(cache string, hit bool) {
	if CacheLookupTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupTotal.WithLabelValues(cache, result).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

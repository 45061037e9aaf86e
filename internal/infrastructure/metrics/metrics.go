package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Reservation metrics
	ReservationsCreated prometheus.Counter
	MovementsConfirmed  prometheus.Counter
	MovementsCancelled  prometheus.Counter
	ReservationDuration prometheus.Histogram
	ReservationAmount   prometheus.Histogram
	ReservationErrors   *prometheus.CounterVec

	// Selector metrics
	SelectorRuns     *prometheus.CounterVec
	SelectorDuration prometheus.Histogram
	SelectorPieces   prometheus.Histogram

	// Stock metrics
	DepositsCreated    prometheus.Counter
	WithdrawalsCreated prometheus.Counter
	StockFreeValue     *prometheus.GaugeVec
	StockOperations    *prometheus.CounterVec

	// Kiosk metrics
	KiosksCreated prometheus.Counter

	// Consistency metrics
	ConsistencyChecks *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Reservation metrics
		ReservationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashstock_reservations_created_total",
			Help: "Total number of stock reservations created",
		}),
		MovementsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashstock_movements_confirmed_total",
			Help: "Total number of movements confirmed",
		}),
		MovementsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashstock_movements_cancelled_total",
			Help: "Total number of movements cancelled",
		}),
		ReservationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashstock_reservation_duration_seconds",
			Help:    "Duration of reservation operations",
			Buckets: prometheus.DefBuckets,
		}),
		ReservationAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashstock_reservation_amount_minor_units",
			Help:    "Reserved amounts in minor units",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000, 100000000},
		}),
		ReservationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashstock_reservation_errors_total",
				Help: "Total number of reservation errors by type",
			},
			[]string{"error_type"},
		),

		// Selector metrics
		SelectorRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashstock_selector_runs_total",
				Help: "Total denomination selector runs by result",
			},
			[]string{"result"},
		),
		SelectorDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashstock_selector_duration_seconds",
			Help:    "Duration of denomination selection",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		SelectorPieces: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashstock_selector_pieces",
			Help:    "Number of physical pieces per selected combination",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
		}),

		// Stock metrics
		DepositsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashstock_deposits_created_total",
			Help: "Total number of stock deposits",
		}),
		WithdrawalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashstock_withdrawals_created_total",
			Help: "Total number of stock withdrawals",
		}),
		StockFreeValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cashstock_stock_free_value",
				Help: "Current free stock value in minor units",
			},
			[]string{"kiosk_id", "currency"},
		),
		StockOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashstock_stock_operations_total",
				Help: "Total stock operations by type",
			},
			[]string{"operation"},
		),

		// Kiosk metrics
		KiosksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashstock_kiosks_created_total",
			Help: "Total number of kiosks created",
		}),

		// Consistency metrics
		ConsistencyChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashstock_consistency_checks_total",
				Help: "Total stock consistency checks by result",
			},
			[]string{"result"},
		),

		// Outbox metrics
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashstock_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cashstock_publish_errors_total",
			Help: "Total outbox publish errors",
		}),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashstock_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}

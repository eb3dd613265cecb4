package metrics

import "github.com/prometheus/client_golang/prometheus"

// Base collectors carry a "service" label. The exported vectors are curried
// views that MustRegister rebinds to the configured service name; before
// that they record under service="" so unregistered callers never panic.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	deviceRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "byod_device_registrations_total",
			Help: "Device registrations by outcome.",
		},
		[]string{"service", "outcome"},
	)

	accessRequestDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "byod_access_request_decisions_total",
			Help: "Approve and reject attempts by result.",
		},
		[]string{"service", "decision", "result"},
	)

	notificationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "byod_notifications_created_total",
			Help: "Notifications written, by type.",
		},
		[]string{"service", "type"},
	)

	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "byod_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)
)

var (
	HTTPRequestsTotal           *prometheus.CounterVec
	HTTPRequestDurationSeconds  *prometheus.HistogramVec
	DeviceRegistrationsTotal    *prometheus.CounterVec
	AccessRequestDecisionsTotal *prometheus.CounterVec
	NotificationsCreatedTotal   *prometheus.CounterVec
	LoginsTotal                 *prometheus.CounterVec
)

func init() { curry("") }

func curry(serviceName string) {
	labels := prometheus.Labels{"service": serviceName}
	HTTPRequestsTotal = httpRequestsTotal.MustCurryWith(labels)
	HTTPRequestDurationSeconds = httpRequestDurationSeconds.MustCurryWith(labels).(*prometheus.HistogramVec)
	DeviceRegistrationsTotal = deviceRegistrationsTotal.MustCurryWith(labels)
	AccessRequestDecisionsTotal = accessRequestDecisionsTotal.MustCurryWith(labels)
	NotificationsCreatedTotal = notificationsCreatedTotal.MustCurryWith(labels)
	LoginsTotal = loginsTotal.MustCurryWith(labels)
}

func MustRegister(serviceName string) {
	MustRegisterWith(prometheus.DefaultRegisterer, serviceName)
}

func MustRegisterWith(reg prometheus.Registerer, serviceName string) {
	curry(serviceName)
	reg.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		deviceRegistrationsTotal,
		accessRequestDecisionsTotal,
		notificationsCreatedTotal,
		loginsTotal,
	)
}

// Result labels an operation outcome for the counters above.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

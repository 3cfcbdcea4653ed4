package photos

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer exports photo subsystem metrics to Prometheus. A nil Observer
// records nothing
type Observer struct {
	duration     *prometheus.HistogramVec
	errors       *prometheus.CounterVec
	files        *prometheus.CounterVec
	writtenBytes prometheus.Counter
}

// NewObserver registers the photo metrics on reg, reusing collectors that
// are already registered
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = "photos"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of photo upload, read and delete operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"}))
	if err != nil {
		return nil, fmt.Errorf("register photo histogram: %w", err)
	}
	errs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Count of failed photo operations.",
	}, []string{"operation"}))
	if err != nil {
		return nil, fmt.Errorf("register photo error counter: %w", err)
	}
	files, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_files_total",
		Help:      "Uploaded files by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, fmt.Errorf("register photo file counter: %w", err)
	}
	written, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "written_bytes_total",
		Help:      "Bytes of normalized JPEG written to storage.",
	}))
	if err != nil {
		return nil, fmt.Errorf("register photo bytes counter: %w", err)
	}

	return &Observer{duration: duration, errors: errs, files: files, writtenBytes: written}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (o *Observer) record(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
}

func (o *Observer) file(outcome string, size int) {
	if o == nil {
		return
	}
	o.files.WithLabelValues(outcome).Inc()
	if size > 0 {
		o.writtenBytes.Add(float64(size))
	}
}

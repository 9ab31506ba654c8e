package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the work done by the provable prime generator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Attempts        prometheus.Counter
	GCDRejections   prometheus.Counter
	ChainRejections prometheus.Counter
	Certified       prometheus.Counter
	SmallPrimes     prometheus.Counter
}

// New creates the generator metrics under the given namespace
func New(namespace string) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pprime",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		Attempts:        counter("attempts_total", "Candidates built from a certified prime and a fresh digit prime."),
		GCDRejections:   counter("gcd_rejections_total", "Candidates sharing a factor with the first fifty primes."),
		ChainRejections: counter("chain_rejections_total", "Candidates no configured base could certify."),
		Certified:       counter("certified_total", "Candidates certified prime."),
		SmallPrimes:     counter("small_primes_total", "Single-digit primes drawn."),
	}
}

// Collectors returns all metrics as collectors for registration
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.Attempts,
		m.GCDRejections,
		m.ChainRejections,
		m.Certified,
		m.SmallPrimes,
	}
}

// Register registers every collector with reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// OnAttempt records a new candidate
func (m *Metrics) OnAttempt() {
	if m == nil {
		return
	}
	m.Attempts.Inc()
}

// OnGCDRejection records a candidate rejected by the small-factor filter
func (m *Metrics) OnGCDRejection() {
	if m == nil {
		return
	}
	m.GCDRejections.Inc()
}

// OnChainRejection records a candidate no base certified
func (m *Metrics) OnChainRejection() {
	if m == nil {
		return
	}
	m.ChainRejections.Inc()
}

// OnCertified records a certified candidate
func (m *Metrics) OnCertified() {
	if m == nil {
		return
	}
	m.Certified.Inc()
}

// OnSmallPrime records a single-digit prime draw
func (m *Metrics) OnSmallPrime() {
	if m == nil {
		return
	}
	m.SmallPrimes.Inc()
}

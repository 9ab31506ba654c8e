package vybiumnumtheory

import (
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/metrics"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/nt"
	"github.com/vybium/vybium-numtheory/internal/vybium-numtheory/utils"
)

// Config represents configuration for provable prime generation
type Config = utils.Config

// Prime is a certified prime P together with Q = (P-1)/2/B, where B is the
// digit prime of the last growth round
type Prime = nt.Prime

// Certificate is the chain of Pocklington steps proving a prime
type Certificate = nt.Certificate

// Step is one link of a Certificate: N = 2AB+1 certified by Base
type Step = nt.Step

// Metrics counts generator activity for Prometheus
type Metrics = metrics.Metrics

// DefaultConfig returns the default configuration: 256-bit primes, all eight
// bases, 28-bit digits, crypto/rand
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// NewMetrics creates generator metrics under the given namespace
func NewMetrics(namespace string) *Metrics {
	return metrics.New(namespace)
}

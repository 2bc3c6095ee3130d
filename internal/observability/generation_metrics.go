package observability

import "time"

// ObserveGeneration records one provider round-trip. Safe on a nil receiver.
func (p *Prom) ObserveGeneration(provider string, fn func() error) error {
	if p == nil {
		return fn()
	}

	p.GenerationInFlight.Inc()
	defer p.GenerationInFlight.Dec()

	start := time.Now()
	err := fn()

	result := "ok"
	if err != nil {
		result = "failed"
	}

	p.GenerationResults.WithLabelValues(provider, result).Inc()
	p.GenerationDuration.WithLabelValues(provider, result).Observe(time.Since(start).Seconds())
	return err
}

func (p *Prom) CacheLookup(kind, result string) {
	if p == nil {
		return
	}
	p.CacheLookups.WithLabelValues(kind, result).Inc()
}

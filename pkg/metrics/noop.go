package metrics

// Noop discards all measurements. Useful in tests, where a shared Prometheus
// registry would collide across cases.
type Noop struct{}

func (Noop) RecordIngested(string)        {}
func (Noop) RecordSkipped(string)         {}
func (Noop) RecordFailed(string)          {}
func (Noop) RecordClassification(string)  {}
func (Noop) RecordLatency(string, float64) {}

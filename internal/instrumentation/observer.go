package instrumentation

import (
	"context"
)

// LifecycleObserver feeds credential lifecycle outcomes into metrics. It
// satisfies the token manager's observer interface without the manager
// depending on this package.
type LifecycleObserver struct {
	metrics *Metrics
}

// NewLifecycleObserver creates an observer over the metrics recorder.
func NewLifecycleObserver(metrics *Metrics) *LifecycleObserver {
	return &LifecycleObserver{metrics: metrics}
}

// TokenValidation records a validation outcome.
func (o *LifecycleObserver) TokenValidation(result string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordTokenValidation(context.Background(), result)
}

// TokenRefresh records a refresh outcome.
func (o *LifecycleObserver) TokenRefresh(result string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordOAuthTokenRefresh(context.Background(), result)
}

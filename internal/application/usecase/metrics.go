package usecase

import "context"

// Metrics records business counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ClientOnboarded(ctx context.Context)
	LoanOriginated(ctx context.Context)
	InstallmentsPaid(ctx context.Context, n int)
	AlertsFired(ctx context.Context, severity string, n int)
	OverdueMaterialized(ctx context.Context, n int)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) ClientOnboarded(context.Context)          {}
func (NopMetrics) LoanOriginated(context.Context)           {}
func (NopMetrics) InstallmentsPaid(context.Context, int)    {}
func (NopMetrics) AlertsFired(context.Context, string, int) {}
func (NopMetrics) OverdueMaterialized(context.Context, int) {}

// Package metrics records business counters with OpenTelemetry instruments.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/24K-5541-Ayan-Ahmed/SahulatFinance"

// Recorder implements usecase.Metrics. Counters export to Prometheus as
// mlms_<name>_total.
type Recorder struct {
	clientsOnboarded    metric.Int64Counter
	loansOriginated     metric.Int64Counter
	installmentsPaid    metric.Int64Counter
	alertsFired         metric.Int64Counter
	overdueMaterialized metric.Int64Counter
}

// NewRecorder creates every instrument on provider's meter.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	m := provider.Meter(meterName)
	r := &Recorder{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&r.clientsOnboarded, "mlms.clients.onboarded", "Borrowers onboarded."},
		{&r.loansOriginated, "mlms.loans.originated", "Loans originated."},
		{&r.installmentsPaid, "mlms.installments.paid", "Installments settled."},
		{&r.alertsFired, "mlms.alerts.fired", "Alerts raised by loan triage, by severity."},
		{&r.overdueMaterialized, "mlms.overdue.materialized", "Installment overdue flags changed by the refresh job."},
	}
	for _, c := range counters {
		ctr, err := m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
		*c.dst = ctr
	}
	return r, nil
}

func (r *Recorder) ClientOnboarded(ctx context.Context) { r.clientsOnboarded.Add(ctx, 1) }

func (r *Recorder) LoanOriginated(ctx context.Context) { r.loansOriginated.Add(ctx, 1) }

func (r *Recorder) InstallmentsPaid(ctx context.Context, n int) {
	r.installmentsPaid.Add(ctx, int64(n))
}

func (r *Recorder) AlertsFired(ctx context.Context, severity string, n int) {
	r.alertsFired.Add(ctx, int64(n), metric.WithAttributes(attribute.String("severity", severity)))
}

func (r *Recorder) OverdueMaterialized(ctx context.Context, n int) {
	r.overdueMaterialized.Add(ctx, int64(n))
}

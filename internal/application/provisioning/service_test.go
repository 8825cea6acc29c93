package provisioning

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jhoicas/conecta-api/internal/application/access"
	"github.com/jhoicas/conecta-api/internal/domain"
	"github.com/jhoicas/conecta-api/internal/testutil"
	"github.com/jhoicas/conecta-api/pkg/metrics"
)

var fixedNow = time.Date(2025, 3, 14, 15, 4, 5, 0, time.UTC)

type fixture struct {
	store *testutil.Store
	idp   *testutil.IdentityProvider
	reg   *prometheus.Registry
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	idp := testutil.NewIdentityProvider()
	reg := prometheus.NewRegistry()
	svc := NewService(store, idp, access.NewGate(store, zerolog.Nop()), metrics.NewProvisioningMetrics(reg), zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return &fixture{store: store, idp: idp, reg: reg, svc: svc}
}

// counter suma el valor del contador name cuyas etiquetas incluyen labels.
func (f *fixture) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metric
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func sessionOf(id string) *domain.Session { return &domain.Session{UserID: id} }

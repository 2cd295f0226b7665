package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("test")
	c.RecordRegistration("ok")
	c.RecordRegistration("ok")
	c.RecordRegistration("duplicate")
	c.RecordFetch("ui", time.Millisecond, nil)
	c.RecordFetch("ui", time.Millisecond, errors.New("boom"))
	c.RecordTransition("x-card", "initialized")
	c.RecordTransition("x-card", "initialized")
	c.RecordTransition("x-card", "destroyed")
	c.RecordBatch(3)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "," + lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 2.0, values["test_registry_registrations_total,result=ok"])
	assert.Equal(t, 1.0, values["test_registry_registrations_total,result=duplicate"])
	assert.Equal(t, 1.0, values["test_loader_fetches_total,namespace=ui,result=error"])
	assert.Equal(t, 1.0, values["test_component_live_instances"])
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordRegistration("ok")
		c.RecordFetch("ui", 0, nil)
		c.RecordBatch(1)
		c.RecordTransition("x-a", "initialized")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("")
	c.RecordRegistration("ok")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `compositor_registry_registrations_total{result="ok"} 1`))
}

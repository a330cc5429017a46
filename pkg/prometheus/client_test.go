package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(&Config{Namespace: "pettest", EnableGoCollector: false})
	require.NoError(t, err)
	assert.Equal(t, "pettest", c.Namespace())
	assert.Equal(t, "/metrics", c.Path())

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: c.Namespace(),
		Name:      "interactions_total",
		Help:      "test",
	})
	c.Registerer().MustRegister(counter)
	counter.Add(3)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "pettest_interactions_total 3")
}

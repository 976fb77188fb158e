package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output contains a sample with the given
// name, partial label pattern and value. The exporter adds scope labels, hence the regex.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, Status(nil))
	assert.Equal(t, StatusError, Status(errors.New("boom")))
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("keyvault_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "keyvault_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "vault", "key_store", StatusSuccess)
	bm.RecordOperation(ctx, "vault", "key_store", StatusSuccess)
	bm.RecordOperation(ctx, "vault", "key_retrieve", StatusError)
	bm.RecordDuration(ctx, "vault", "key_store", 5*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, "vault", "key_store", 7*time.Millisecond, StatusSuccess)

	start := time.Now()
	Observe(ctx, bm, "crypto", "encrypt", start, nil)
	Observe(ctx, bm, "crypto", "decrypt", start, errors.New("bad key"))

	output := scrape(t, provider)

	assertMetricLine(t, output, `keyvault_test_operations_total`,
		`domain="vault".*operation="key_store".*status="success"`, `2`)
	assertMetricLine(t, output, `keyvault_test_operations_total`,
		`domain="vault".*operation="key_retrieve".*status="error"`, `1`)
	assertMetricLine(t, output, `keyvault_test_operations_total`,
		`domain="crypto".*operation="encrypt".*status="success"`, `1`)
	assertMetricLine(t, output, `keyvault_test_operations_total`,
		`domain="crypto".*operation="decrypt".*status="error"`, `1`)
	assertMetricLine(t, output, `keyvault_test_operation_duration_seconds_count`,
		`domain="vault".*operation="key_store".*status="success"`, `2`)
	assertMetricLine(t, output, `keyvault_test_operation_duration_seconds_count`,
		`domain="crypto".*operation="decrypt".*status="error"`, `1`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	m := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, m)

	ctx := context.Background()
	m.RecordOperation(ctx, "vault", "key_store", StatusSuccess)
	m.RecordDuration(ctx, "vault", "key_store", time.Millisecond, StatusError)
	Observe(ctx, m, "vault", "key_list", time.Now(), nil)
}

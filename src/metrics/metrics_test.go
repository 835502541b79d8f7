package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"Backend-PMS/src/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthOperation(t *testing.T) {
	m := New()
	m.AuthOperation("login", models.RoleStudent, OutcomeSuccess)
	m.AuthOperation("login", models.RoleStudent, OutcomeSuccess)
	m.AuthOperation("login", models.RoleAdmin, OutcomeFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOps.WithLabelValues("login", "student", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOps.WithLabelValues("login", "admin", OutcomeFailure)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthOperation("register", models.RoleFaculty, OutcomeError)
		m.AuditFailure()
		m.ResumeUploaded(1024)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.AuditFailure()
	m.ResumeUploaded(2048)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, "pms_activity_record_failures_total 1"))
	assert.Contains(t, text, "pms_resume_upload_bytes_count 1")
}

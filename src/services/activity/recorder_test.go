package activity

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"Backend-PMS/src/logger"
	"Backend-PMS/src/metrics"
	"Backend-PMS/src/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// blockingStore holds every insert until its context is done.
type blockingStore struct{}

func (blockingStore) Insert(ctx context.Context, _ *models.LoginEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRecorder(t *testing.T) {
	t.Run("TestRecordsEvent", func(t *testing.T) {
		store := NewMemoryEventStore()
		r := NewRecorder(store, logger.Nop(), nil, time.Second)

		r.Record(context.Background(), "a@x.com", models.RoleStudent, models.ActivitySignup)
		r.Wait()

		events := store.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "a@x.com", events[0].Email)
		assert.Equal(t, models.RoleStudent, events[0].Role)
		assert.Equal(t, models.ActivitySignup, events[0].Activity)
		assert.False(t, events[0].CreatedAt.IsZero())
	})

	t.Run("TestFailureIsSwallowed", func(t *testing.T) {
		store := NewMemoryEventStore()
		store.Err = errors.New("mongo down")
		var buf bytes.Buffer
		m := metrics.New()
		r := NewRecorder(store, logger.NewWithWriter(&buf, 0, "text"), m, time.Second)

		r.Record(context.Background(), "a@x.com", models.RoleAdmin, models.ActivityLogin)
		r.Wait()

		assert.Empty(t, store.Events())
		assert.Contains(t, buf.String(), "failed to record activity")
		assert.Contains(t, buf.String(), "mongo down")
		n, err := testutil.GatherAndCount(m.Gatherer(), "pms_activity_record_failures_total")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("TestOutlivesRequestContext", func(t *testing.T) {
		store := NewMemoryEventStore()
		r := NewRecorder(store, logger.Nop(), nil, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r.Record(ctx, "a@x.com", models.RoleFaculty, models.ActivityProfileUpdate)
		r.Wait()

		assert.Len(t, store.Events(), 1)
	})

	t.Run("TestTimeoutBoundsWrite", func(t *testing.T) {
		r := NewRecorder(blockingStore{}, logger.Nop(), nil, 300*time.Millisecond)

		start := time.Now()
		r.Record(context.Background(), "a@x.com", models.RoleStudent, models.ActivityLogin)
		assert.Less(t, time.Since(start), 100*time.Millisecond, "Record must not block")

		r.Wait()
		assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
	})
}

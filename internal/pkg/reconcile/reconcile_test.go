package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"

	"github.com/Shintumon/combochart/internal/pkg/config"
	"github.com/Shintumon/combochart/internal/pkg/model"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	getAll int
	saves  int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (s *fakeStore) GetAll(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getAll++

	return s.values, s.err
}

func (s *fakeStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

func (s *fakeStore) SaveAsync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves++
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}

func (s *fakeStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.values[key]
}

var testColumns = []model.Column{
	{FieldName: "Region", DataType: model.TypeString},
	{FieldName: "SUM(Sales)", DataType: model.TypeFloat},
	{FieldName: "SUM(Profit)", DataType: model.TypeFloat},
}

func newTestController(t *testing.T, store *fakeStore) *Controller {
	t.Helper()

	c := NewController(config.MustDefaults(), store, WithDebounce(20*time.Millisecond))
	t.Cleanup(c.Close)

	return c
}

func waitSaves(t *testing.T, store *fakeStore, want int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return store.saveCount() == want
	}, time.Second, 5*time.Millisecond)
}

func TestLoadPersistedOncePerSession(t *testing.T) {
	store := newFakeStore()
	store.values["bargap"] = "0.3"

	c := newTestController(t, store)

	require.NoError(t, c.LoadPersisted(context.Background()))
	assert.InDelta(t, 0.3, c.Config().BarGap, 1e-9)

	require.NoError(t, c.LoadPersisted(context.Background()))
	assert.Equal(t, 1, store.getAll)
}

func TestLoadPersistedFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("assert.AnError general error for testing")

	c := newTestController(t, store)
	require.Error(t, c.LoadPersisted(context.Background()))
}

func TestApplyEncoding(t *testing.T) {
	store := newFakeStore()
	c := newTestController(t, store)

	enc := model.EncodingMap{
		model.RoleDimension: "Region",
		model.RoleBar1:      "Sales",
	}

	t.Run("first change applies and schedules one write", func(t *testing.T) {
		require.True(t, c.ApplyEncoding(enc, testColumns))

		// the base name resolved against the aggregated column
		assert.Equal(t, "SUM(Sales)", c.Config().Mapping.Bar1)
		assert.Equal(t, "Region", c.Config().Mapping.Dimension)

		waitSaves(t, store, 1)
	})

	t.Run("identical repeat schedules nothing", func(t *testing.T) {
		require.False(t, c.ApplyEncoding(enc, testColumns))

		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, 1, store.saveCount())
	})

	t.Run("new measure applies again", func(t *testing.T) {
		enc[model.RoleBar1] = "Profit"
		require.True(t, c.ApplyEncoding(enc, testColumns))
		assert.Equal(t, "SUM(Profit)", c.Config().Mapping.Bar1)

		waitSaves(t, store, 2)
	})
}

func TestDebounceCoalesces(t *testing.T) {
	store := newFakeStore()
	c := newTestController(t, store)

	enc := model.EncodingMap{model.RoleDimension: "Region", model.RoleBar1: "Sales"}
	require.True(t, c.ApplyEncoding(enc, testColumns))

	// a burst of distinct changes within the window collapses to one write
	enc[model.RoleBar1] = "Profit"
	require.True(t, c.ApplyEncoding(enc, testColumns))
	enc[model.RoleBar1] = "Sales"
	require.True(t, c.ApplyEncoding(enc, testColumns))

	waitSaves(t, store, 1)

	// and the write carries the newest mapping, not the first
	assert.Contains(t, store.get("mapping"), "SUM(Sales)")
}

func TestSessionEditManualOverride(t *testing.T) {
	store := newFakeStore()
	c := newTestController(t, store)

	enc := model.EncodingMap{model.RoleDimension: "Region", model.RoleBar1: "Sales"}
	require.True(t, c.ApplyEncoding(enc, testColumns))

	t.Run("diverging edit engages the override", func(t *testing.T) {
		edited := *c.Config()
		edited.Mapping.Bar1 = "SUM(Profit)"
		c.ApplySessionEdit(edited)

		assert.True(t, c.Config().UseManualMapping)
		assert.Equal(t, "SUM(Profit)", c.Config().Mapping.Bar1)
	})

	t.Run("encoding changes are ignored while overridden", func(t *testing.T) {
		assert.False(t, c.ApplyEncoding(enc, testColumns))
		assert.Equal(t, "SUM(Profit)", c.Config().Mapping.Bar1)
	})

	t.Run("reset returns control to the live encoding", func(t *testing.T) {
		c.ResetManualOverride()

		assert.False(t, c.Config().UseManualMapping)
		assert.Equal(t, "SUM(Sales)", c.Config().Mapping.Bar1)
	})

	t.Run("matching edit releases the override", func(t *testing.T) {
		edited := *c.Config()
		c.ApplySessionEdit(edited)

		assert.False(t, c.Config().UseManualMapping)
	})
}

func TestCloseCancelsPendingWrite(t *testing.T) {
	store := newFakeStore()
	c := NewController(config.MustDefaults(), store, WithDebounce(20*time.Millisecond))

	enc := model.EncodingMap{model.RoleDimension: "Region", model.RoleBar1: "Sales"}
	require.True(t, c.ApplyEncoding(enc, testColumns))
	c.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, store.saveCount())
}

func TestFlush(t *testing.T) {
	store := newFakeStore()
	c := newTestController(t, store)

	enc := model.EncodingMap{model.RoleDimension: "Region", model.RoleBar1: "Sales"}
	require.True(t, c.ApplyEncoding(enc, testColumns))

	c.Flush()
	assert.Equal(t, 1, store.saveCount())

	// nothing pending, nothing written
	c.Flush()
	assert.Equal(t, 1, store.saveCount())
}

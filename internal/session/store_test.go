package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/obcall/internal/domain"
)

var utc = domain.TimeFormat{Location: time.UTC}

func newRecord(id string) *domain.Record {
	return domain.NewRecord(id, "inst-1", time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC), utc)
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Get())
	rec, gen := s.Snapshot()
	assert.Nil(t, rec)
	assert.Zero(t, gen)
}

func TestStoreRejectsRecordWithoutContactID(t *testing.T) {
	s := NewStore()
	_, err := s.Put(&domain.Record{InstanceID: "inst-1"})
	require.Error(t, err)
	assert.True(t, domain.IsState(err))
	assert.Nil(t, s.Get())
}

func TestStorePutReplacesAndReturnsCopies(t *testing.T) {
	s := NewStore()
	gen1, err := s.Put(newRecord("a"))
	require.NoError(t, err)
	gen2, err := s.Put(newRecord("b"))
	require.NoError(t, err)
	assert.Greater(t, gen2, gen1)

	got := s.Get()
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ContactID)

	got.Upsert(domain.FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	assert.Len(t, s.Get().Fields, 2)
}

func TestStoreCompareAndPutRejectsStaleGeneration(t *testing.T) {
	s := NewStore()
	_, err := s.Put(newRecord("a"))
	require.NoError(t, err)

	stale, gen := s.Snapshot()
	_, err = s.Put(newRecord("b"))
	require.NoError(t, err)

	stale.Upsert(domain.FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	_, err = s.CompareAndPut(gen, stale)
	require.Error(t, err)
	assert.True(t, domain.IsState(err))
	assert.Equal(t, "b", s.Get().ContactID)
}

func TestStoreCompareAndPutAcceptsCurrentGeneration(t *testing.T) {
	s := NewStore()
	_, err := s.Put(newRecord("a"))
	require.NoError(t, err)

	rec, gen := s.Snapshot()
	rec.Upsert(domain.FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	next, err := s.CompareAndPut(gen, rec)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	_, ok := s.Get().Value(domain.FieldDisconnectReason)
	assert.True(t, ok)
}

func TestStoreConcurrentCompareAndPutOneWinner(t *testing.T) {
	s := NewStore()
	_, err := s.Put(newRecord("a"))
	require.NoError(t, err)
	rec, gen := s.Snapshot()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CompareAndPut(gen, rec); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestDefaultStatePath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	got, err := DefaultStatePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, ".obcall", "session.json"), got)
}

func TestLoadStateMissingFile(t *testing.T) {
	store, err := LoadState(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, store.Get())
}

func TestSaveAndLoadStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := NewStore()
	rec := newRecord("abc-123")
	rec.Upsert(domain.FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	gen, err := s.Put(rec)
	require.NoError(t, err)
	require.NoError(t, SaveState(path, s))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	got, loadedGen := loaded.Snapshot()
	assert.Equal(t, gen, loadedGen)
	assert.True(t, rec.Equal(got))
}

func TestUpdateStateRejectsSessionReplacedByAnotherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewStore()
	_, err := first.Put(newRecord("first"))
	require.NoError(t, err)
	require.NoError(t, SaveState(path, first))

	// a long-running refresh loads the session
	watcher, err := LoadState(path)
	require.NoError(t, err)
	stale, base := watcher.Snapshot()

	// a new call is placed by a separate invocation
	caller, err := LoadState(path)
	require.NoError(t, err)
	_, err = caller.Put(newRecord("second"))
	require.NoError(t, err)
	require.NoError(t, SaveState(path, caller))

	stale.Upsert(domain.FieldDisconnectReason, "CUSTOMER_DISCONNECT")
	_, err = watcher.CompareAndPut(base, stale)
	require.NoError(t, err)
	err = UpdateState(path, base, watcher)
	require.Error(t, err)
	assert.True(t, domain.IsState(err))

	onDisk, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, "second", onDisk.Get().ContactID)
	_, ok := onDisk.Get().Value(domain.FieldDisconnectReason)
	assert.False(t, ok)
}

func TestUpdateStateAcceptsUnchangedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := NewStore()
	_, err := s.Put(newRecord("abc"))
	require.NoError(t, err)
	require.NoError(t, SaveState(path, s))

	for i := 0; i < 3; i++ {
		rec, base := s.Snapshot()
		rec.Upsert(domain.FieldDisconnectReason, "CUSTOMER_DISCONNECT")
		_, err := s.CompareAndPut(base, rec)
		require.NoError(t, err)
		require.NoError(t, UpdateState(path, base, s))
	}

	onDisk, err := LoadState(path)
	require.NoError(t, err)
	_, gen := onDisk.Snapshot()
	assert.Equal(t, uint64(4), gen)
}

func TestSaveStateMovesPastDiskGeneration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	a := NewStore()
	b := NewStore()
	_, err := a.Put(newRecord("a"))
	require.NoError(t, err)
	require.NoError(t, SaveState(path, a))

	_, err = b.Put(newRecord("b"))
	require.NoError(t, err)
	require.NoError(t, SaveState(path, b))

	_, bGen := b.Snapshot()
	assert.Equal(t, uint64(2), bGen)
	onDisk, err := LoadState(path)
	require.NoError(t, err)
	rec, gen := onDisk.Snapshot()
	assert.Equal(t, "b", rec.ContactID)
	assert.Equal(t, uint64(2), gen)
}

func TestStateLockTimesOutAndBreaksStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	lockPath := path + ".lock"
	require.NoError(t, os.WriteFile(lockPath, []byte("1\n"), 0o644))

	origTimeout := lockTimeout
	lockTimeout = 50 * time.Millisecond
	defer func() { lockTimeout = origTimeout }()

	s := NewStore()
	_, err := s.Put(newRecord("a"))
	require.NoError(t, err)
	require.Error(t, SaveState(path, s))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(lockPath, old, old))
	require.NoError(t, SaveState(path, s))

	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err))
}

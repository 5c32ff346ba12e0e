package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vburojevic/obcall/internal/domain"
)

const stateSchemaVersion = 1

// State is the on-disk form of a store, so one interactive session can span
// several command invocations.
type State struct {
	Type          string         `json:"type"` // "session_state"
	SchemaVersion int            `json:"schemaVersion"`
	Generation    uint64         `json:"generation"`
	Record        *domain.Record `json:"record,omitempty"`
}

// DefaultStatePath returns ~/.obcall/session.json, creating the directory.
func DefaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".obcall")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// LoadState reads a state file into a new store. A missing file yields an
// empty store.
func LoadState(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("session state path is required")
	}
	st, err := readState(path)
	if err != nil {
		return nil, err
	}
	store := NewStore()
	if st.Record != nil && st.Record.ContactID == "" {
		return nil, fmt.Errorf("decode session state: record without contact id")
	}
	if st.Record != nil {
		store.restore(st.Record, st.Generation)
	}
	return store, nil
}

// SaveState records a newly placed call. It never fails on a concurrent
// writer: the saved generation is moved past whatever is on disk and the
// store is advanced to match.
func SaveState(path string, store *Store) error {
	if store == nil {
		return errors.New("session store is required")
	}
	return withStateLock(path, func(onDisk State) error {
		rec, gen := store.Snapshot()
		if onDisk.Generation >= gen {
			gen = onDisk.Generation + 1
			store.restore(rec, gen)
		}
		return writeState(path, rec, gen)
	})
}

// UpdateState records a refresh that started from generation base. It
// fails with a *domain.StateError when another process replaced the
// session since base was loaded.
func UpdateState(path string, base uint64, store *Store) error {
	if store == nil {
		return errors.New("session store is required")
	}
	return withStateLock(path, func(onDisk State) error {
		rec, gen := store.Snapshot()
		if rec == nil {
			return &domain.StateError{Message: "refusing to save an empty session"}
		}
		if onDisk.Generation != base || onDisk.Record == nil || onDisk.Record.ContactID != rec.ContactID {
			return &domain.StateError{Message: "session was replaced by a newer call"}
		}
		return writeState(path, rec, gen)
	})
}

// StateFile persists a store at Path after each call or refresh.
type StateFile struct {
	Path string
}

// Replace saves a newly placed call.
func (f StateFile) Replace(store *Store) error { return SaveState(f.Path, store) }

// Update saves a refresh that started from generation base.
func (f StateFile) Update(base uint64, store *Store) error { return UpdateState(f.Path, base, store) }

func readState(path string) (State, error) {
	var st State
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, err
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, fmt.Errorf("decode session state: %w", err)
	}
	return st, nil
}

// writeState replaces path atomically with a temp file and rename.
func writeState(path string, rec *domain.Record, gen uint64) error {
	st := State{
		Type:          "session_state",
		SchemaVersion: stateSchemaVersion,
		Generation:    gen,
		Record:        rec,
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Lock file tuning; a lock older than lockStaleAfter is left over from a
// crashed process and is broken.
var (
	lockTimeout    = 5 * time.Second
	lockRetry      = 10 * time.Millisecond
	lockStaleAfter = 30 * time.Second
)

// withStateLock runs fn with the on-disk state while holding path.lock.
func withStateLock(path string, fn func(onDisk State) error) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("session state path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	unlock, err := acquireLock(path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()

	onDisk, err := readState(path)
	if err != nil {
		return err
	}
	return fn(onDisk)
}

func acquireLock(lockPath string) (func(), error) {
	deadline := time.Now().Add(lockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		if info, statErr := os.Stat(lockPath); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			os.Remove(lockPath)
			continue
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("session state is locked: %s", lockPath)
		}
		time.Sleep(lockRetry)
	}
}

package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

var errInjected = errors.New("injected failure")

// fakeStore records calls and fails on demand.
type fakeStore struct {
	mu          sync.Mutex
	ensured     []string
	replaced    map[string][][]any
	execs       []string
	failReplace string // table whose ReplaceTable fails
	failExec    bool
	calls       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{replaced: make(map[string][][]any)}
}

func (f *fakeStore) Exec(_ context.Context, stmt string, _ ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failExec {
		return errInjected
	}
	f.execs = append(f.execs, stmt)
	return nil
}

func (f *fakeStore) EnsureTable(_ context.Context, t store.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ensured = append(f.ensured, t.Name)
	return nil
}

func (f *fakeStore) ReplaceTable(_ context.Context, t store.Table, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if t.Name == f.failReplace {
		return errInjected
	}
	f.replaced[t.Name] = rows
	return nil
}

func (f *fakeStore) Query(context.Context, string, ...any) ([]store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

// execsInto counts the Exec statements inserting into table.
func (f *fakeStore) execsInto(table string) int {
	n := 0
	for _, s := range f.execs {
		if strings.HasPrefix(s, "INSERT INTO "+store.QuoteIdent(table)) {
			n++
		}
	}
	return n
}

package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and local runs. Commits are
// all-or-nothing: every operation is checked before any is applied.
type Memory struct {
	mu      sync.Mutex
	cols    map[string]map[string]memDoc
	clock   time.Time
	commits int

	failNext     error
	beforeCommit []func()
}

type memDoc struct {
	data    map[string]any
	updated time.Time
}

func NewMemory() *Memory {
	return &Memory{
		cols:  map[string]map[string]memDoc{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *Memory) NewID(string) string {
	return uuid.NewString()
}

func (m *Memory) Get(_ context.Context, collection, id string) (*Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.cols[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoDocument, collection, id)
	}
	return d.toDoc(id), nil
}

func (m *Memory) GetByIDs(_ context.Context, collection string, ids []string) ([]Doc, error) {
	if len(ids) > MaxIDsPerRead {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyIDs, len(ids), MaxIDsPerRead)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Doc, 0, len(ids))
	for _, id := range ids {
		if d, ok := m.cols[collection][id]; ok {
			out = append(out, *d.toDoc(id))
		}
	}
	return out, nil
}

func (m *Memory) List(_ context.Context, collection string) ([]Doc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.cols[collection]
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Doc, 0, len(ids))
	for _, id := range ids {
		out = append(out, *col[id].toDoc(id))
	}
	return out, nil
}

func (m *Memory) Commit(_ context.Context, b *Batch) error {
	if b == nil || b.Len() == 0 {
		return nil
	}

	// hooks run outside the lock so they can issue their own writes
	for _, fn := range m.takeHooks() {
		fn()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}

	// Pending view of the batch so later ops see earlier ones in the same batch.
	exists := func(col, id string) (memDoc, bool) {
		d, ok := m.cols[col][id]
		return d, ok
	}
	staged := map[string]bool{}
	deleted := map[string]bool{}
	key := func(col, id string) string { return col + "/" + id }

	for _, op := range b.Ops() {
		k := key(op.Collection, op.ID)
		cur, found := exists(op.Collection, op.ID)
		present := (found || staged[k]) && !deleted[k]

		switch op.Kind {
		case OpCreate:
			if present {
				return fmt.Errorf("%s: document already exists", k)
			}
			staged[k], deleted[k] = true, false
		case OpSet:
			staged[k], deleted[k] = true, false
		case OpUpdate:
			if !present {
				return fmt.Errorf("%s: no document to update", k)
			}
			if !op.IfUpdatedAt.IsZero() && (!found || !cur.updated.Equal(op.IfUpdatedAt)) {
				return fmt.Errorf("%w: %s was updated after it was read", ErrPrecondition, k)
			}
		case OpDelete:
			deleted[k], staged[k] = true, false
		default:
			return fmt.Errorf("unsupported batch op %d", op.Kind)
		}
	}

	m.clock = m.clock.Add(time.Millisecond)
	now := m.clock
	for _, op := range b.Ops() {
		col := m.cols[op.Collection]
		if col == nil {
			col = map[string]memDoc{}
			m.cols[op.Collection] = col
		}
		switch op.Kind {
		case OpCreate, OpSet:
			col[op.ID] = memDoc{data: cloneMap(op.Fields), updated: now}
		case OpUpdate:
			d := col[op.ID]
			data := cloneMap(d.data)
			if data == nil {
				data = map[string]any{}
			}
			for f, v := range op.Fields {
				data[f] = cloneValue(v)
			}
			col[op.ID] = memDoc{data: data, updated: now}
		case OpDelete:
			delete(col, op.ID)
		}
	}
	m.commits++
	return nil
}

// FailNextCommit makes the next Commit return err without applying anything.
func (m *Memory) FailNextCommit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// BeforeNextCommit runs fn at the start of the next Commit, before the batch
// is checked or applied. Used to interleave a competing writer.
func (m *Memory) BeforeNextCommit(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeCommit = append(m.beforeCommit, fn)
}

// Commits returns the number of successfully applied batches.
func (m *Memory) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Exists reports whether a document is stored.
func (m *Memory) Exists(collection, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.cols[collection][id]
	return ok
}

func (m *Memory) takeHooks() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	hooks := m.beforeCommit
	m.beforeCommit = nil
	return hooks
}

func (d memDoc) toDoc(id string) *Doc {
	return &Doc{ID: id, Data: cloneMap(d.data), UpdateTime: d.updated}
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	default:
		return v
	}
}

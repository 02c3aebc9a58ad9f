package docstore

import "time"

type OpKind int

const (
	OpCreate OpKind = iota
	OpSet
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpSet:
		return "set"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one write inside a Batch.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Fields     map[string]any

	// IfUpdatedAt, when set on an update, makes the whole batch fail unless
	// the document was last written at exactly this time.
	IfUpdatedAt time.Time
}

// Batch collects writes to be committed atomically.
type Batch struct {
	ops []Op
}

func NewBatch() *Batch {
	return &Batch{}
}

// Create fails the commit if the document already exists.
func (b *Batch) Create(collection, id string, fields map[string]any) *Batch {
	b.ops = append(b.ops, Op{Kind: OpCreate, Collection: collection, ID: id, Fields: fields})
	return b
}

// Set overwrites the whole document.
func (b *Batch) Set(collection, id string, fields map[string]any) *Batch {
	b.ops = append(b.ops, Op{Kind: OpSet, Collection: collection, ID: id, Fields: fields})
	return b
}

// Update writes only the given fields and fails the commit if the document
// does not exist.
func (b *Batch) Update(collection, id string, fields map[string]any) *Batch {
	b.ops = append(b.ops, Op{Kind: OpUpdate, Collection: collection, ID: id, Fields: fields})
	return b
}

// UpdateIfUnchanged is Update guarded by the document's last update time.
func (b *Batch) UpdateIfUnchanged(collection, id string, fields map[string]any, lastUpdate time.Time) *Batch {
	b.ops = append(b.ops, Op{Kind: OpUpdate, Collection: collection, ID: id, Fields: fields, IfUpdatedAt: lastUpdate})
	return b
}

func (b *Batch) Delete(collection, id string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDelete, Collection: collection, ID: id})
	return b
}

func (b *Batch) Ops() []Op { return b.ops }

func (b *Batch) Len() int { return len(b.ops) }

// Counts returns the number of operations per kind, for logging.
func (b *Batch) Counts() map[string]int {
	out := map[string]int{}
	for _, op := range b.ops {
		out[op.Kind.String()]++
	}
	return out
}

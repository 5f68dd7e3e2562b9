package docstore

// OpKind enumerates the write operations a batch may carry.
type OpKind int

const (
	// OpSet creates the document at Path or replaces it entirely.
	OpSet OpKind = iota
	// OpUpdate replaces the fields of a document that must already exist.
	OpUpdate
	// OpArrayUnion appends Values to the array field of an existing
	// document, skipping values already present.
	OpArrayUnion
	// OpDelete removes the document at Path.
	OpDelete
)

// Op is one write operation in a batch.
type Op struct {
	Kind   OpKind
	Path   string
	Fields Fields
	Field  string
	Values []string
}

// Batch collects write operations applied atomically by Client.Apply.
// Operations are applied in the order they were queued.
type Batch struct {
	Ops []Op
}

// NewBatch returns an empty batch ready for chaining.
func NewBatch() *Batch {
	return &Batch{}
}

// Set queues a create-or-replace of the document at path.
func (b *Batch) Set(path string, fields Fields) *Batch {
	b.Ops = append(b.Ops, Op{Kind: OpSet, Path: path, Fields: fields})
	return b
}

// Update queues a full field replacement of an existing document.
func (b *Batch) Update(path string, fields Fields) *Batch {
	b.Ops = append(b.Ops, Op{Kind: OpUpdate, Path: path, Fields: fields})
	return b
}

// ArrayUnion queues appending values to an array field of an existing
// document. Values already in the array are left alone.
func (b *Batch) ArrayUnion(path, field string, values ...string) *Batch {
	b.Ops = append(b.Ops, Op{Kind: OpArrayUnion, Path: path, Field: field, Values: values})
	return b
}

// Delete queues removal of the document at path.
func (b *Batch) Delete(path string) *Batch {
	b.Ops = append(b.Ops, Op{Kind: OpDelete, Path: path})
	return b
}

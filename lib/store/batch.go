package store

// --------------------------------------------------------------------------
// Batch Operations
// --------------------------------------------------------------------------

// OpKind tags a single batch operation. The zero value is deliberately
// invalid so that an uninitialised Operation is rejected rather than
// silently treated as a put.
type OpKind uint8

const (
	OpInvalid OpKind = iota
	OpPut
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return "invalid"
	}
}

// Operation is one entry of an atomic batch. Puts carry a value, deletes
// must not: a delete with a non-nil value is malformed and rejected during
// validation.
type Operation struct {
	Kind   OpKind
	Family ColumnFamily
	Key    []byte
	Value  []byte
}

// Put builds a put operation for use with Apply.
func Put(cf ColumnFamily, key, value []byte) Operation {
	return Operation{Kind: OpPut, Family: cf, Key: key, Value: value}
}

// Delete builds a delete operation for use with Apply.
func Delete(cf ColumnFamily, key []byte) Operation {
	return Operation{Kind: OpDelete, Family: cf, Key: key}
}

// Apply commits ops as a single atomic unit: either every operation takes
// effect or none does. Validation runs over the complete batch before
// anything is staged against the engine, so a single invalid family
// (CodeInvalidColumnFamily) or malformed operation (CodeInvalidOperation)
// rejects the whole batch without side effects. Operations apply in slice
// order; later entries win over earlier ones on the same key. An empty
// batch succeeds trivially.
func (s *Store) Apply(ops []Operation) error {
	for i := range ops {
		op := &ops[i]
		if !op.Family.Valid() {
			return errInvalidFamily(op.Family.String())
		}
		switch op.Kind {
		case OpPut:
		case OpDelete:
			if op.Value != nil {
				return &Error{Code: CodeInvalidOperation, Op: "delete with value"}
			}
		default:
			return &Error{Code: CodeInvalidOperation, Op: op.Kind.String()}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errStoreClosed()
	}

	batch := s.eng.NewBatch()
	defer func() { _ = batch.Close() }()

	for _, op := range ops {
		switch op.Kind {
		case OpPut:
			batch.Set(op.Family.namespace(), op.Key, op.Value)
		case OpDelete:
			batch.Delete(op.Family.namespace(), op.Key)
		}
	}

	if err := s.eng.Apply(batch); err != nil {
		return errEngine(CodeBatchFailed, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Batch Affordances
// --------------------------------------------------------------------------

// PutEntry is one key-value pair of a write-only batch.
type PutEntry struct {
	Family ColumnFamily
	Key    []byte
	Value  []byte
}

// DeleteEntry is one key of a delete-only batch.
type DeleteEntry struct {
	Family ColumnFamily
	Key    []byte
}

// WriteBatch atomically stores all entries. It is a convenience wrapper
// around Apply for put-only batches.
func (s *Store) WriteBatch(entries []PutEntry) error {
	ops := make([]Operation, len(entries))
	for i, e := range entries {
		ops[i] = Put(e.Family, e.Key, e.Value)
	}
	return s.Apply(ops)
}

// DeleteBatch atomically removes all entries. It is a convenience wrapper
// around Apply for delete-only batches.
func (s *Store) DeleteBatch(entries []DeleteEntry) error {
	ops := make([]Operation, len(entries))
	for i, e := range entries {
		ops[i] = Delete(e.Family, e.Key)
	}
	return s.Apply(ops)
}

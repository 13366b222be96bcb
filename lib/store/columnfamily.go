package store

import (
	"github.com/trikv-io/triKV/lib/engine"
)

// --------------------------------------------------------------------------
// Column Families
// --------------------------------------------------------------------------

// ColumnFamily identifies one of the fixed keyspaces every store carries.
// The set is closed: stores are always provisioned with exactly these six
// families and no operation can create or drop one at runtime.
type ColumnFamily uint8

const (
	FamilyID2Str  ColumnFamily = iota // id -> term mapping
	FamilyStr2ID                      // term -> id mapping
	FamilySPO                         // subject-predicate-object index
	FamilyPOS                         // predicate-object-subject index
	FamilyOSP                         // object-subject-predicate index
	FamilyDerived                     // materialized derived data

	numFamilies = 6
)

var familyNames = [numFamilies]string{
	"id2str",
	"str2id",
	"spo",
	"pos",
	"osp",
	"derived",
}

// String returns the wire name of the family ("id2str", "spo", ...).
func (cf ColumnFamily) String() string {
	if !cf.Valid() {
		return "invalid"
	}
	return familyNames[cf]
}

// Valid reports whether cf is one of the six defined families.
func (cf ColumnFamily) Valid() bool {
	return cf < numFamilies
}

// namespace maps the family onto the engine keyspace backing it.
func (cf ColumnFamily) namespace() engine.Namespace {
	return engine.Namespace(familyNames[cf])
}

// ResolveFamily parses a wire name into its ColumnFamily. Unknown names,
// including the empty string, yield an error with CodeInvalidColumnFamily.
func ResolveFamily(name string) (ColumnFamily, error) {
	for i, n := range familyNames {
		if n == name {
			return ColumnFamily(i), nil
		}
	}
	return 0, errInvalidFamily(name)
}

// Families returns all column families in declaration order.
func Families() []ColumnFamily {
	out := make([]ColumnFamily, numFamilies)
	for i := range out {
		out[i] = ColumnFamily(i)
	}
	return out
}

// FamilyNames returns the wire names of all column families in declaration
// order. The returned slice is a fresh copy.
func FamilyNames() []string {
	out := make([]string, numFamilies)
	copy(out, familyNames[:])
	return out
}

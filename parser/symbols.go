package parser

// SymbolKind tags the four symbol variants of spec.md §3.
type SymbolKind int

const (
	// KindScalar is a single memory cell at a procedure-relative offset.
	KindScalar SymbolKind = iota
	// KindArray is a contiguous run of cells of fixed length at a base offset.
	KindArray
	// KindRefScalar is a parameter slot holding the address of a caller
	// scalar; reads/writes dereference the slot once.
	KindRefScalar
	// KindRefArray is a parameter slot holding the base address of a
	// caller array; element access dereferences the slot then adds the index.
	KindRefArray
)

func (k SymbolKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindRefScalar:
		return "reference scalar"
	case KindRefArray:
		return "reference array"
	default:
		return "symbol"
	}
}

// IsArray reports whether the symbol addresses by index (array or ref-array).
func (k SymbolKind) IsArray() bool {
	return k == KindArray || k == KindRefArray
}

// IsReference reports whether the symbol's Offset names a parameter slot
// holding an address, rather than the datum itself.
func (k SymbolKind) IsReference() bool {
	return k == KindRefScalar || k == KindRefArray
}

// Symbol is one declared name within a procedure: a local scalar, a local
// array, or a by-reference parameter of either shape (spec.md §3).
type Symbol struct {
	Name string
	Kind SymbolKind

	// Offset is the procedure-relative memory offset. For KindScalar and
	// KindArray it addresses the datum directly. For KindRefScalar and
	// KindRefArray it addresses the parameter slot that holds the
	// caller-supplied address.
	Offset uint64

	// Length is the declared element count; only meaningful for KindArray.
	Length uint64

	// Initialized tracks whether a scalar (or reference scalar) has been
	// set by READ, assignment, or call-argument propagation. Array element
	// initialization is never tracked (spec.md §3).
	Initialized bool

	DeclLine int
}

// RefKind tags how an Expr's Ref addresses a value.
type RefKind int

const (
	// RefName is a bare scalar identifier: load("x").
	RefName RefKind = iota
	// RefIndexConst is an array/ref-array element at a literal index.
	RefIndexConst
	// RefIndexName is an array/ref-array element indexed by a scalar variable.
	RefIndexName
)

// Ref names the target of an assign/read command or an ExprLoad leaf:
// a scalar, or an array element indexed by a literal or by another scalar's
// value (spec.md §3's Expression.ref / array / ref_array shapes).
type Ref struct {
	Kind      RefKind
	Name      string
	Index     uint64 // RefIndexConst
	IndexName string // RefIndexName: name of the scalar supplying the index
}

// ScalarRef builds a plain scalar reference.
func ScalarRef(name string) Ref { return Ref{Kind: RefName, Name: name} }

// ArrayRefConst builds an array-element reference at a literal index.
func ArrayRefConst(name string, index uint64) Ref {
	return Ref{Kind: RefIndexConst, Name: name, Index: index}
}

// ArrayRefVar builds an array-element reference indexed by a scalar.
func ArrayRefVar(name, indexName string) Ref {
	return Ref{Kind: RefIndexName, Name: name, IndexName: indexName}
}

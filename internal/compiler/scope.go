package compiler

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// BindingKind tags what an identifier resolves to in a scope frame.
type BindingKind int

const (
	BindConst BindingKind = iota
	BindVar
	BindArray
	BindPointer
	BindFunction
)

// Binding is what an identifier is bound to in a lexical frame.
type Binding struct {
	Kind BindingKind

	// BindConst
	ConstVal int32

	// BindVar / BindArray / BindPointer: the Alloc/GlobalAlloc (or, for
	// BindPointer, the parameter slot holding a pointer) this name refers
	// to.
	Slot *Value

	// BindFunction
	Func *Function

	// BindArray: total declared dimension count. BindPointer: dimension
	// count *after* the formal's always-omitted first dimension. Kept
	// alongside the binding (rather than re-derived by walking nested
	// Array types at every use site) so address arithmetic dispatches on
	// binding kind, not runtime type inspection.
	Dims int
}

// Scopes is a stack of lexical frames: each a Go map from identifier to
// Binding. The outermost frame holds globals and the eight library
// intrinsics, pre-populated before any user code lowers.
type Scopes struct {
	// Frames are plain maps and do not record insertion order;
	// GlobalNames gives a sorted view of the outermost frame instead.
	frames []map[string]*Binding
}

// NewScopes builds a symbol table with one (outermost) frame.
func NewScopes() *Scopes {
	return &Scopes{frames: []map[string]*Binding{{}}}
}

// PushFrame opens a new lexical frame.
func (s *Scopes) PushFrame() {
	s.frames = append(s.frames, map[string]*Binding{})
}

// PopFrame closes the innermost lexical frame.
func (s *Scopes) PopFrame() {
	if len(s.frames) == 0 {
		panic("internal: PopFrame on empty scope stack")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Define binds name in the current (innermost) frame. It is an error to
// redefine a name already present in that same frame; shadowing an outer
// frame's binding is fine.
func (s *Scopes) Define(name string, b *Binding) error {
	cur := s.frames[len(s.frames)-1]
	if _, ok := cur[name]; ok {
		return errors.Errorf("duplicate definition of %q in the same scope", name)
	}
	cur[name] = b
	return nil
}

// Lookup walks frames from innermost to outermost.
func (s *Scopes) Lookup(name string) (*Binding, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][name]; ok {
			return b, nil
		}
	}
	return nil, errors.Errorf("unknown identifier %q", name)
}

// GlobalNames returns the outermost frame's names in a deterministic,
// sorted order. Nothing in the compiler pipeline calls it: lowering never
// needs to enumerate a scope (it always looks up by name).
func (s *Scopes) GlobalNames() []string {
	names := maps.Keys(s.frames[0])
	slices.Sort(names)
	return names
}

// Depth reports the current nesting depth (1 = outermost only).
func (s *Scopes) Depth() int {
	return len(s.frames)
}

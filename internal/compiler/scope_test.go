package compiler

import "testing"

func TestScopesDefineAndLookup(t *testing.T) {
	s := NewScopes()
	if err := s.Define("x", &Binding{Kind: BindConst, ConstVal: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := s.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Kind != BindConst || b.ConstVal != 7 {
		t.Errorf("got %+v, want BindConst/7", b)
	}
}

func TestScopesDuplicateDefinitionFails(t *testing.T) {
	s := NewScopes()
	if err := s.Define("x", &Binding{Kind: BindVar}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Define("x", &Binding{Kind: BindVar}); err == nil {
		t.Fatal("expected a duplicate-definition error")
	}
}

func TestScopesShadowing(t *testing.T) {
	s := NewScopes()
	if err := s.Define("x", &Binding{Kind: BindConst, ConstVal: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.PushFrame()
	if err := s.Define("x", &Binding{Kind: BindConst, ConstVal: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner, err := s.Lookup("x")
	if err != nil || inner.ConstVal != 2 {
		t.Fatalf("inner lookup: got %+v, err %v, want ConstVal 2", inner, err)
	}
	s.PopFrame()
	outer, err := s.Lookup("x")
	if err != nil || outer.ConstVal != 1 {
		t.Fatalf("outer lookup after pop: got %+v, err %v, want ConstVal 1", outer, err)
	}
}

func TestScopesLookupUnknown(t *testing.T) {
	s := NewScopes()
	if _, err := s.Lookup("nope"); err == nil {
		t.Fatal("expected an error for an unknown identifier")
	}
}

func TestScopesDepth(t *testing.T) {
	s := NewScopes()
	if s.Depth() != 1 {
		t.Fatalf("fresh Scopes: got depth %d, want 1", s.Depth())
	}
	s.PushFrame()
	s.PushFrame()
	if s.Depth() != 3 {
		t.Fatalf("after two pushes: got depth %d, want 3", s.Depth())
	}
	s.PopFrame()
	if s.Depth() != 2 {
		t.Fatalf("after one pop: got depth %d, want 2", s.Depth())
	}
}

func TestScopesGlobalNamesSorted(t *testing.T) {
	s := NewScopes()
	_ = s.Define("b", &Binding{Kind: BindVar})
	_ = s.Define("a", &Binding{Kind: BindVar})
	_ = s.Define("c", &Binding{Kind: BindVar})
	names := s.GlobalNames()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

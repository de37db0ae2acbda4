package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// TypeRegistry maps declared type names to their definitions.
// Entries are inserted once and never replaced: the first declaration wins.
type TypeRegistry struct {
	types map[string]Type
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]Type)}
}

// Define records name -> t. It reports false, leaving the existing entry
// in place, when name is already defined.
func (r *TypeRegistry) Define(name string, t Type) bool {
	if _, ok := r.types[name]; ok {
		return false
	}
	r.types[name] = t
	return true
}

// Lookup returns the definition of name and whether it was found.
func (r *TypeRegistry) Lookup(name string) (Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns the defined names in sorted order.
func (r *TypeRegistry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined types.
func (r *TypeRegistry) Len() int { return len(r.types) }

// String returns a deterministically ordered dump of the registry.
func (r *TypeRegistry) String() string {
	if len(r.types) == 0 {
		return "Types: (empty)\n"
	}
	var sb strings.Builder
	sb.WriteString("Types:\n")
	for _, name := range r.Names() {
		t := r.types[name]
		fmt.Fprintf(&sb, "  %-20s  %s\n", name, t)
		if st, ok := t.(*StructType); ok {
			if st.Alloc != nil {
				fmt.Fprintf(&sb, "  %-20s    alloc: %s\n", "", st.Alloc.Name)
			}
			if st.Free != nil {
				fmt.Fprintf(&sb, "  %-20s    free:  %s\n", "", st.Free.Name)
			}
		}
	}
	return sb.String()
}

// AutoVar is an auto-storage variable waiting for cleanup at block exit.
// Type is the declared type after one level of named-type resolution.
type AutoVar struct {
	Name string
	Type Type
}

// ScopeStack tracks pending cleanups, one list per open block.
type ScopeStack struct {
	scopes [][]AutoVar
}

// Push opens a new block scope.
func (s *ScopeStack) Push() {
	s.scopes = append(s.scopes, nil)
}

// Pop closes the innermost scope and returns its variables in
// declaration order.
func (s *ScopeStack) Pop() []AutoVar {
	if len(s.scopes) == 0 {
		return nil
	}
	top := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]
	return top
}

// Depth returns the number of open scopes.
func (s *ScopeStack) Depth() int { return len(s.scopes) }

// Declare registers v in the innermost scope. It reports false when no
// scope is open or v.Name is already registered there.
func (s *ScopeStack) Declare(v AutoVar) bool {
	if len(s.scopes) == 0 {
		return false
	}
	top := len(s.scopes) - 1
	for _, existing := range s.scopes[top] {
		if existing.Name == v.Name {
			return false
		}
	}
	s.scopes[top] = append(s.scopes[top], v)
	return true
}

// String returns a dump of the open scopes, innermost last.
func (s *ScopeStack) String() string {
	if len(s.scopes) == 0 {
		return "Scopes: (empty)\n"
	}
	var sb strings.Builder
	sb.WriteString("Scopes:\n")
	for i, scope := range s.scopes {
		fmt.Fprintf(&sb, "  Scope %d:\n", i)
		for _, v := range scope {
			fmt.Fprintf(&sb, "    %-20s  %s\n", v.Name, v.Type)
		}
	}
	return sb.String()
}

// Clone returns an independent copy of the registry. The type values
// themselves are shared.
func (r *TypeRegistry) Clone() *TypeRegistry {
	c := NewTypeRegistry()
	for name, t := range r.types {
		c.types[name] = t
	}
	return c
}

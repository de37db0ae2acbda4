package compiler

import (
	"fmt"
	"strings"
)

// Type is implemented by every type node. C renders the type as C type
// syntax with no declared name; use Declarator to declare a name.
type Type interface {
	typeNode()
	C() string
	String() string
}

// Primitive is a built-in scalar type, named by its source keyword.
type Primitive string

const (
	TypeU8         Primitive = "u8"
	TypeU16        Primitive = "u16"
	TypeU32        Primitive = "u32"
	TypeU64        Primitive = "u64"
	TypeS8         Primitive = "s8"
	TypeS16        Primitive = "s16"
	TypeS32        Primitive = "s32"
	TypeS64        Primitive = "s64"
	TypeChar       Primitive = "char"
	TypeInt        Primitive = "int"
	TypeShort      Primitive = "short"
	TypeLong       Primitive = "long"
	TypeLongLong   Primitive = "longlong"
	TypeF32        Primitive = "f32"
	TypeF64        Primitive = "f64"
	TypeFloat      Primitive = "float"
	TypeDouble     Primitive = "double"
	TypeLongDouble Primitive = "longdouble"
	TypeBool       Primitive = "bool"
	TypeSBool      Primitive = "sbool"
	TypeVoid       Primitive = "void"
)

var primitiveC = map[Primitive]string{
	TypeU8:         "unsigned char",
	TypeU16:        "unsigned short",
	TypeU32:        "unsigned int",
	TypeU64:        "unsigned long",
	TypeS8:         "signed char",
	TypeS16:        "signed short",
	TypeS32:        "signed int",
	TypeS64:        "signed long",
	TypeChar:       "char",
	TypeInt:        "int",
	TypeShort:      "short",
	TypeLong:       "long",
	TypeLongLong:   "long long",
	TypeF32:        "float",
	TypeF64:        "double",
	TypeFloat:      "float",
	TypeDouble:     "double",
	TypeLongDouble: "long double",
	TypeBool:       "unsigned char",
	TypeSBool:      "signed char",
	TypeVoid:       "void",
}

// primitiveByToken maps each type keyword to its Primitive.
var primitiveByToken = map[TokenType]Primitive{
	U8: TypeU8, U16: TypeU16, U32: TypeU32, U64: TypeU64,
	S8: TypeS8, S16: TypeS16, S32: TypeS32, S64: TypeS64,
	CHAR: TypeChar, INT: TypeInt, SHORT: TypeShort, LONG: TypeLong, LONGLONG: TypeLongLong,
	F32: TypeF32, F64: TypeF64, FLOAT: TypeFloat, DOUBLE: TypeDouble, LONGDOUBLE: TypeLongDouble,
	BOOL: TypeBool, SBOOL: TypeSBool, VOID: TypeVoid,
}

func (Primitive) typeNode()        {}
func (p Primitive) C() string      { return primitiveC[p] }
func (p Primitive) String() string { return string(p) }

// PointerType is *Elem.
//
//	**int   =>   &PointerType{Elem: &PointerType{Elem: TypeInt}}
type PointerType struct {
	Elem Type
}

func (*PointerType) typeNode() {}
func (p *PointerType) C() string {
	if isFuncPointer(p.Elem) {
		return Declarator(p.Elem, "*")
	}
	return p.Elem.C() + "*"
}
func (p *PointerType) String() string { return "*" + p.Elem.String() }

// ProcType is proc(Params...), a pointer to a procedure.
type ProcType struct {
	Params []Type
}

func (*ProcType) typeNode()        {}
func (p *ProcType) C() string      { return Declarator(p, "") }
func (p *ProcType) String() string { return "proc(" + sourceParams(p.Params) + ")" }

// FuncType is func(Params...) Return, a pointer to a function.
type FuncType struct {
	Params []Type
	Return Type
}

func (*FuncType) typeNode()   {}
func (f *FuncType) C() string { return Declarator(f, "") }
func (f *FuncType) String() string {
	return "func(" + sourceParams(f.Params) + ") " + f.Return.String()
}

// Field is one named member of a struct or union.
type Field struct {
	Name string
	Type Type
}

// StructType is the body of type Name is struct ... end.
//
// Methods holds member procedures and functions as parsed; they are kept on
// the type but never emitted. Alloc and Free are the synthesised
// Name_alloc and Name_free hooks, either may be nil.
type StructType struct {
	Name    string
	Fields  []Field
	Methods []Stmt
	Alloc   *FuncDecl
	Free    *ProcDecl
}

func (*StructType) typeNode()        {}
func (s *StructType) C() string      { return "struct " + fieldBlock(s.Fields) }
func (s *StructType) String() string { return "struct " + s.Name + fieldString(s.Fields) }

// UnionType is the body of type Name is union ... end.
type UnionType struct {
	Fields []Field
}

func (*UnionType) typeNode()        {}
func (u *UnionType) C() string      { return "union " + fieldBlock(u.Fields) }
func (u *UnionType) String() string { return "union" + fieldString(u.Fields) }

// EnumType is the body of type Name is enum ... end.
type EnumType struct {
	Members []string
}

func (*EnumType) typeNode() {}
func (e *EnumType) C() string {
	if len(e.Members) == 0 {
		return "enum { }"
	}
	return "enum { " + strings.Join(e.Members, ", ") + " }"
}
func (e *EnumType) String() string { return "enum{" + strings.Join(e.Members, ", ") + "}" }

// NamedType is an unresolved reference to a declared type. It renders as
// the bare name; the TypeRegistry resolves it during generation.
type NamedType struct {
	Name string
}

func (*NamedType) typeNode()        {}
func (n *NamedType) C() string      { return n.Name }
func (n *NamedType) String() string { return n.Name }

// Declarator renders a C declaration of name with type t, e.g.
//
//	Declarator(TypeInt, "x")                          "int x"
//	Declarator(&PointerType{Elem: TypeU8}, "p")       "unsigned char* p"
//	Declarator(&ProcType{Params: ...int}, "cb")       "void (*cb)(int)"
//	Declarator(&FuncType{...int -> int}, "op")        "int (*op)(int)"
//
// An empty name yields an abstract declarator suitable for casts and sizeof.
func Declarator(t Type, name string) string {
	switch t := t.(type) {
	case *ProcType:
		return "void (*" + name + ")(" + typeList(t.Params, Type.C) + ")"
	case *FuncType:
		return Declarator(t.Return, "(*"+name+")("+typeList(t.Params, Type.C)+")")
	case *PointerType:
		if isFuncPointer(t.Elem) {
			return Declarator(t.Elem, "*"+name)
		}
	}
	if name == "" {
		return t.C()
	}
	return t.C() + " " + name
}

// isFuncPointer reports whether t is a proc or func type, possibly behind
// further pointers. Those need the name placed inside the declarator.
func isFuncPointer(t Type) bool {
	switch t := t.(type) {
	case *ProcType, *FuncType:
		return true
	case *PointerType:
		return isFuncPointer(t.Elem)
	}
	return false
}

func typeList(ts []Type, render func(Type) string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = render(t)
	}
	return strings.Join(parts, ", ")
}

// sourceParams renders a parameter type list as dawn source. "(*" always
// opens a comment, so a leading pointer parameter is written "( *T".
func sourceParams(ts []Type) string {
	s := typeList(ts, Type.String)
	if strings.HasPrefix(s, "*") {
		s = " " + s
	}
	return s
}

func fieldBlock(fields []Field) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for _, f := range fields {
		sb.WriteString(Declarator(f.Type, f.Name))
		sb.WriteString("; ")
	}
	sb.WriteString("}")
	return sb.String()
}

func fieldString(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s is %s", f.Name, f.Type)
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// resolvedStruct returns the struct a resolved auto type points at, if the
// type is a pointer to a struct.
func resolvedStruct(t Type) (*StructType, bool) {
	p, ok := t.(*PointerType)
	if !ok {
		return nil, false
	}
	s, ok := p.Elem.(*StructType)
	return s, ok
}

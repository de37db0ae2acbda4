package compiler

import (
	"reflect"
	"testing"
)

func TestTypeC(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"u8", TypeU8, "unsigned char"},
		{"s64", TypeS64, "signed long"},
		{"longlong", TypeLongLong, "long long"},
		{"longdouble", TypeLongDouble, "long double"},
		{"bool", TypeBool, "unsigned char"},
		{"sbool", TypeSBool, "signed char"},
		{"pointer", &PointerType{Elem: TypeChar}, "char*"},
		{"double pointer", &PointerType{Elem: &PointerType{Elem: TypeInt}}, "int**"},
		{"named", &PointerType{Elem: &NamedType{Name: "Node"}}, "Node*"},
		{"proc", &ProcType{Params: []Type{TypeInt, TypeChar}}, "void (*)(int, char)"},
		{"func", &FuncType{Params: []Type{TypeInt}, Return: TypeU16}, "unsigned short (*)(int)"},
		{"pointer to func", &PointerType{Elem: &FuncType{Return: TypeInt}}, "int (**)()"},
		{"struct", &StructType{Name: "P", Fields: []Field{{"x", TypeInt}, {"y", TypeF32}}}, "struct { int x; float y; }"},
		{"union", &UnionType{Fields: []Field{{"i", TypeInt}}}, "union { int i; }"},
		{"enum", &EnumType{Members: []string{"A", "B"}}, "enum { A, B }"},
		{"empty enum", &EnumType{}, "enum { }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.C(); got != tt.want {
				t.Errorf("C() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeclarator(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		id   string
		want string
	}{
		{"scalar", TypeInt, "x", "int x"},
		{"pointer", &PointerType{Elem: TypeU8}, "p", "unsigned char* p"},
		{"proc", &ProcType{Params: []Type{TypeInt}}, "cb", "void (*cb)(int)"},
		{"func", &FuncType{Params: []Type{TypeInt}, Return: TypeInt}, "op", "int (*op)(int)"},
		{"func returning func", &FuncType{Return: &FuncType{Params: []Type{TypeChar}, Return: TypeInt}}, "f", "int (*(*f)())(char)"},
		{"pointer to proc", &PointerType{Elem: &ProcType{}}, "tbl", "void (**tbl)()"},
		{"abstract", &PointerType{Elem: TypeVoid}, "", "void*"},
		{"struct field of func type", &StructType{Fields: []Field{{"run", &ProcType{}}}}, "T", "struct { void (*run)(); } T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Declarator(tt.typ, tt.id); got != tt.want {
				t.Errorf("Declarator(%s, %q) = %q, want %q", tt.typ, tt.id, got, tt.want)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"func pointer", &PointerType{Elem: &FuncType{Params: []Type{&NamedType{Name: "Node"}, TypeInt}, Return: TypeBool}}, "*func(Node, int) bool"},
		{"leading pointer param", &FuncType{Params: []Type{&PointerType{Elem: TypeU8}}, Return: TypeInt}, "func( *u8) int"},
		{"proc leading pointer param", &ProcType{Params: []Type{&PointerType{Elem: TypeInt}, TypeChar}}, "proc( *int, char)"},
		{"later pointer param", &ProcType{Params: []Type{TypeInt, &PointerType{Elem: TypeChar}}}, "proc(int, *char)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// A type's String form must lex and parse back to the same type.
func TestTypeStringReparses(t *testing.T) {
	types := []Type{
		&FuncType{Params: []Type{&PointerType{Elem: TypeU8}}, Return: TypeLongDouble},
		&PointerType{Elem: &ProcType{Params: []Type{&PointerType{Elem: &PointerType{Elem: TypeChar}}}}},
		&ProcType{Params: []Type{&FuncType{Params: []Type{&PointerType{Elem: TypeInt}}, Return: TypeInt}}},
	}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			stmts := mustParse(t, "var v is "+typ.String()+";")
			if got := stmts[0].(*VarDecl).Type; !reflect.DeepEqual(got, typ) {
				t.Errorf("reparsed type = %v, want %v", got, typ)
			}
		})
	}
}

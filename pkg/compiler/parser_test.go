package compiler

import (
	"reflect"
	"testing"
)

func mustParse(t *testing.T, src string) []Stmt {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	stmts, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return stmts
}

// parseExpr parses src as the initializer of a throwaway declaration.
func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	stmts := mustParse(t, "var _e is int "+src+";")
	return stmts[0].(*VarDecl).Init
}

// bodyOf returns the statements of the first procedure's block body.
func bodyOf(t *testing.T, stmts []Stmt) []Stmt {
	t.Helper()
	proc, ok := stmts[0].(*ProcDecl)
	if !ok {
		t.Fatalf("expected *ProcDecl, got %T", stmts[0])
	}
	block, ok := proc.Body.(*BlockStmt)
	if !ok {
		t.Fatalf("expected *BlockStmt body, got %T", proc.Body)
	}
	return block.Stmts
}

// TestParse verifies that Parse produces the correct AST for valid inputs.
func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Stmt
	}{
		{
			name:  "Variable Declaration",
			input: "var x is int 10;",
			expected: []Stmt{
				&VarDecl{Name: "x", Type: TypeInt, Init: &IntLiteral{Value: 10}, Line: 1},
			},
		},
		{
			name:  "Qualified Declaration",
			input: "volatile static const var p is *u8;",
			expected: []Stmt{
				&VarDecl{Volatile: true, Storage: StorageStatic, Const: true, Name: "p",
					Type: &PointerType{Elem: TypeU8}, Line: 1},
			},
		},
		{
			name:  "Auto With Size",
			input: "proc main() is begin auto(16) var buf is *char; end",
			expected: []Stmt{
				&ProcDecl{Name: "main", Line: 1, Body: &BlockStmt{Stmts: []Stmt{
					&VarDecl{Storage: StorageAuto, AutoSize: &IntLiteral{Value: 16}, Name: "buf",
						Type: &PointerType{Elem: TypeChar}, Line: 1},
				}}},
			},
		},
		{
			name:  "Function",
			input: "func add(a is int, const b is int) int is return a + b;",
			expected: []Stmt{
				&FuncDecl{
					Name: "add",
					Params: []Param{
						{Name: "a", Type: TypeInt},
						{Const: true, Name: "b", Type: TypeInt},
					},
					Return: TypeInt,
					Body: &ReturnStmt{Expr: &BinaryExpr{Op: PLUS,
						Left: &VarRef{Name: "a"}, Right: &VarRef{Name: "b"}}},
					Line: 1,
				},
			},
		},
		{
			name:  "Enum",
			input: "type Color is enum RED; GREEN; end",
			expected: []Stmt{
				&TypeDecl{Name: "Color", Type: &EnumType{Members: []string{"RED", "GREEN"}}, Line: 1},
			},
		},
		{
			name:  "Union With Trailing Semicolon",
			input: "type Num is union i is int; f is float; end;",
			expected: []Stmt{
				&TypeDecl{Name: "Num", Type: &UnionType{Fields: []Field{
					{Name: "i", Type: TypeInt},
					{Name: "f", Type: TypeFloat},
				}}, Line: 1},
			},
		},
		{
			name:  "Alias",
			input: "type Handler is alias proc(int, *char)",
			expected: []Stmt{
				&TypeDecl{Name: "Handler", Type: &ProcType{Params: []Type{
					TypeInt, &PointerType{Elem: TypeChar},
				}}, Line: 1},
			},
		},
		{
			name:  "Import",
			input: `import "std"`,
			expected: []Stmt{
				&ImportStmt{Name: "std", Line: 1},
			},
		},
		{
			name:  "Raw At Top Level",
			input: "(*%#include <stdlib.h>*)",
			expected: []Stmt{
				&RawStmt{Text: "#include <stdlib.h>"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := mustParse(t, tt.input)
			if !reflect.DeepEqual(stmts, tt.expected) {
				t.Errorf("Parse() mismatch\ngot:  %v\nwant: %v", stmts, tt.expected)
			}
		})
	}
}

func TestParseRightAssociative(t *testing.T) {
	tests := []struct {
		input string
		want  Expr
	}{
		{
			input: "a - b - c",
			want: &BinaryExpr{Op: MINUS, Left: &VarRef{Name: "a"},
				Right: &BinaryExpr{Op: MINUS, Left: &VarRef{Name: "b"}, Right: &VarRef{Name: "c"}}},
		},
		{
			input: "a / b / c",
			want: &BinaryExpr{Op: SLASH, Left: &VarRef{Name: "a"},
				Right: &BinaryExpr{Op: SLASH, Left: &VarRef{Name: "b"}, Right: &VarRef{Name: "c"}}},
		},
		{
			input: "a or b or c",
			want: &BinaryExpr{Op: OR, Left: &VarRef{Name: "a"},
				Right: &BinaryExpr{Op: OR, Left: &VarRef{Name: "b"}, Right: &VarRef{Name: "c"}}},
		},
		{
			// tighter tiers still bind first
			input: "a + b * c - d",
			want: &BinaryExpr{Op: PLUS, Left: &VarRef{Name: "a"},
				Right: &BinaryExpr{Op: MINUS,
					Left:  &BinaryExpr{Op: STAR, Left: &VarRef{Name: "b"}, Right: &VarRef{Name: "c"}},
					Right: &VarRef{Name: "d"}}},
		},
		{
			input: "(a - b) - c",
			want: &BinaryExpr{Op: MINUS,
				Left:  &BinaryExpr{Op: MINUS, Left: &VarRef{Name: "a"}, Right: &VarRef{Name: "b"}},
				Right: &VarRef{Name: "c"}},
		},
		{
			input: "a = b += 1",
			want: &BinaryExpr{Op: ASSIGN, Left: &VarRef{Name: "a"},
				Right: &BinaryExpr{Op: PLUS_ASSIGN, Left: &VarRef{Name: "b"}, Right: &IntLiteral{Value: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseExpr(t, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parse %q\ngot:  %v\nwant: %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseUnaryAndPostfix(t *testing.T) {
	tests := []struct {
		input string
		want  Expr
	}{
		{"ref x", &RefExpr{X: &VarRef{Name: "x"}}},
		{"deref deref p", &DerefExpr{X: &DerefExpr{X: &VarRef{Name: "p"}}}},
		{"- ~x", &NegateExpr{X: &BitNotExpr{X: &VarRef{Name: "x"}}}},
		{"!done", &NotExpr{X: &VarRef{Name: "done"}}},
		{"inc i", &IncDecExpr{Op: INC, X: &VarRef{Name: "i"}}},
		{"i dec", &IncDecExpr{Op: DEC, X: &VarRef{Name: "i"}, Postfix: true}},
		{"p.*link.value", &MemberExpr{Left: &PtrMemberExpr{Left: &VarRef{Name: "p"}, Member: "link"}, Member: "value"}},
		{"xs[i + 1]", &IndexExpr{Left: &VarRef{Name: "xs"},
			Index: &BinaryExpr{Op: PLUS, Left: &VarRef{Name: "i"}, Right: &IntLiteral{Value: 1}}}},
		{"f(1, 'c')(x)", &CallExpr{
			Callee: &CallExpr{Callee: &VarRef{Name: "f"}, Args: []Expr{&IntLiteral{Value: 1}, &CharLiteral{Value: "c"}}},
			Args:   []Expr{&VarRef{Name: "x"}}}},
		{"list:push(4)", &MethodCall{Object: &VarRef{Name: "list"}, Name: "push", Args: []Expr{&IntLiteral{Value: 4}}}},
		{"list:clear()", &MethodCall{Object: &VarRef{Name: "list"}, Name: "clear"}},
		{"x as *u8", &CastExpr{X: &VarRef{Name: "x"}, Type: &PointerType{Elem: TypeU8}}},
		{"sizeof Foo", &SizeofExpr{Type: &NamedType{Name: "Foo"}}},
		{"alloc 4 * n", &AllocExpr{Size: &BinaryExpr{Op: STAR, Left: &IntLiteral{Value: 4}, Right: &VarRef{Name: "n"}}}},
		{"labelref done", &LabelRef{Name: "done"}},
		{"2.5", &FloatLiteral{Value: 2.5}},
		{`"hi"`, &StringLiteral{Value: "hi"}},
		{"true", &BoolLiteral{Value: true}},
		{"(*% NULL *)", &RawExpr{Text: " NULL "}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseExpr(t, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parse %q\ngot:  %v\nwant: %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePointerNesting(t *testing.T) {
	stmts := mustParse(t, "var p is ****int;")
	var typ Type = stmts[0].(*VarDecl).Type
	for depth := 0; depth < 4; depth++ {
		ptr, ok := typ.(*PointerType)
		if !ok {
			t.Fatalf("level %d: expected *PointerType, got %T", depth, typ)
		}
		typ = ptr.Elem
	}
	if typ != TypeInt {
		t.Errorf("innermost type = %v, want int", typ)
	}
}

func TestParseFuncTypes(t *testing.T) {
	stmts := mustParse(t, "var cb is *func(int, u8) *char;")
	want := &PointerType{Elem: &FuncType{
		Params: []Type{TypeInt, TypeU8},
		Return: &PointerType{Elem: TypeChar},
	}}
	if got := stmts[0].(*VarDecl).Type; !reflect.DeepEqual(got, want) {
		t.Errorf("type = %v, want %v", got, want)
	}
}

func TestParseStruct(t *testing.T) {
	src := `
type List is struct
    head is *Node;
    size is int;
    proc push(this is *List, v is int) is begin end
    alloc is begin return alloc sizeof List; end
    free(self) is begin free self; end
end`
	stmts := mustParse(t, src)
	td, ok := stmts[0].(*TypeDecl)
	if !ok {
		t.Fatalf("expected *TypeDecl, got %T", stmts[0])
	}
	st, ok := td.Type.(*StructType)
	if !ok {
		t.Fatalf("expected *StructType, got %T", td.Type)
	}

	wantFields := []Field{
		{Name: "head", Type: &PointerType{Elem: &NamedType{Name: "Node"}}},
		{Name: "size", Type: TypeInt},
	}
	if !reflect.DeepEqual(st.Fields, wantFields) {
		t.Errorf("Fields = %v, want %v", st.Fields, wantFields)
	}
	if len(st.Methods) != 1 {
		t.Fatalf("len(Methods) = %d, want 1", len(st.Methods))
	}
	if p, ok := st.Methods[0].(*ProcDecl); !ok || p.Name != "push" {
		t.Errorf("Methods[0] = %v, want proc push", st.Methods[0])
	}

	self := &PointerType{Elem: &NamedType{Name: "List"}}
	if st.Alloc == nil || st.Alloc.Name != "List_alloc" || len(st.Alloc.Params) != 0 {
		t.Fatalf("Alloc = %v, want List_alloc()", st.Alloc)
	}
	if !reflect.DeepEqual(st.Alloc.Return, self) {
		t.Errorf("Alloc.Return = %v, want *List", st.Alloc.Return)
	}
	if st.Free == nil || st.Free.Name != "List_free" {
		t.Fatalf("Free = %v, want List_free", st.Free)
	}
	wantParams := []Param{{Name: "self", Type: self}}
	if !reflect.DeepEqual(st.Free.Params, wantParams) {
		t.Errorf("Free.Params = %v, want %v", st.Free.Params, wantParams)
	}
}

func TestParseStatements(t *testing.T) {
	src := `
proc main() is begin
    if a begin end else b();
    while i < 3 i = i + 1;
    do x(); while y
    for var i is int 0; i < 10; i inc begin end
    for ;; begin end
    goto out;
    gotoptr table[i];
    label out:
    asm "nop";
    free p;
    return;
    break;
    continue;
    (*% raw(); *)
end`
	body := bodyOf(t, mustParse(t, src))
	want := []string{
		"IfStmt", "WhileStmt", "DoWhileStmt", "ForStmt", "ForStmt", "GotoStmt", "GotoPtrStmt",
		"LabelStmt", "AsmStmt", "FreeStmt", "ReturnStmt", "BreakStmt", "ContinueStmt", "RawStmt",
	}
	if len(body) != len(want) {
		t.Fatalf("got %d statements, want %d: %v", len(body), len(want), body)
	}
	for i, s := range body {
		if got := reflect.TypeOf(s).Elem().Name(); got != want[i] {
			t.Errorf("stmt %d: got %s, want %s", i, got, want[i])
		}
	}

	fs := body[3].(*ForStmt)
	if d, ok := fs.Init.(*VarDecl); !ok || d.Name != "i" {
		t.Errorf("for init = %v, want decl of i", fs.Init)
	}
	if fs.Post == nil {
		t.Error("for post clause missing")
	}
	empty := body[4].(*ForStmt)
	if empty.Init != nil || empty.Cond != nil || empty.Post != nil {
		t.Errorf("empty for = %v, want all clauses nil", empty)
	}
	if l := body[7].(*LabelStmt); l.Name != "out" {
		t.Errorf("label = %q, want out", l.Name)
	}
}

func TestParseSwitch(t *testing.T) {
	src := `
proc main() is begin
    switch x begin
        case 1 : a(); next
        case B : b();
        default : c();
    end
end`
	body := bodyOf(t, mustParse(t, src))
	sw, ok := body[0].(*SwitchStmt)
	if !ok {
		t.Fatalf("expected *SwitchStmt, got %T", body[0])
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("len(Cases) = %d, want 2", len(sw.Cases))
	}
	if !sw.Cases[0].Fallthrough || sw.Cases[1].Fallthrough {
		t.Errorf("fallthrough flags = %v, %v; want true, false", sw.Cases[0].Fallthrough, sw.Cases[1].Fallthrough)
	}
	if !reflect.DeepEqual(sw.Cases[1].Value, &VarRef{Name: "B"}) {
		t.Errorf("case value = %v, want B", sw.Cases[1].Value)
	}
	if sw.Default == nil {
		t.Error("default missing")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		line       int
		incomplete bool
	}{
		{"Missing Semicolon", "var x is int 5\nproc main() is begin end", 2, false},
		{"Bad Top Level", "\n\nreturn 5;", 3, false},
		{"Expected Type", "var x is 5;", 1, false},
		{"Duplicate Alloc", "type A is struct\nalloc is begin end\nalloc is begin end\nend", 3, false},
		{"Duplicate Free", "type A is struct\nfree(a) is begin end\nfree(b) is begin end\nend", 3, false},
		{"Duplicate Field", "type A is struct\nx is int;\nx is int;\nend", 3, false},
		{"Unclosed Block", "proc main() is begin\nfoo();", 2, true},
		{"Unclosed Struct", "type A is struct\nx is int;", 2, true},
		{"Integer Overflow", "var x is int 99999999999999999999;", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex failed: %v", err)
			}
			stmts, err := Parse(tokens)
			if err == nil {
				t.Fatalf("expected error, got %v", stmts)
			}
			if stmts != nil {
				t.Errorf("expected no partial output, got %v", stmts)
			}
			ce, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if ce.Kind != KindSyntax {
				t.Errorf("Kind = %q, want %q", ce.Kind, KindSyntax)
			}
			if ce.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", ce.Line, tt.line, err)
			}
			if ce.Incomplete != tt.incomplete {
				t.Errorf("Incomplete = %v, want %v", ce.Incomplete, tt.incomplete)
			}
		})
	}
}

func TestParseDeclarationRoundTrip(t *testing.T) {
	tests := []string{
		"var x is int;",
		"const var x is u8 7;",
		"extern var y is *s16;",
		"volatile register var r is long;",
		"static const var cb is *proc(int, char);",
		"var f is func( *u8) longdouble;",
		"var g is *proc( **char, int);",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			first := mustParse(t, src)[0].(*VarDecl)
			again := mustParse(t, renderDecl(first))[0].(*VarDecl)
			if !reflect.DeepEqual(first, again) {
				t.Errorf("round trip changed declaration\nfirst: %v\nagain: %v", first, again)
			}
		})
	}
}

// renderDecl writes d back as dawn source.
func renderDecl(d *VarDecl) string {
	s := ""
	if d.Volatile {
		s += "volatile "
	}
	if d.Storage != StorageNone {
		s += d.Storage.String() + " "
	}
	if d.Const {
		s += "const "
	}
	s += "var " + d.Name + " is " + d.Type.String()
	if d.Init != nil {
		s += " " + d.Init.String()
	}
	return s + ";"
}

package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// CodeGen walks an AST and emits C source text.
type CodeGen struct {
	types  *TypeRegistry
	scopes ScopeStack
	out    strings.Builder
	indent int
}

func newCodeGen(types *TypeRegistry) *CodeGen {
	return &CodeGen{types: types}
}

// line writes one indented line of output.
func (cg *CodeGen) line(format string, args ...any) {
	cg.out.WriteString(strings.Repeat("    ", cg.indent))
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

// blank separates top-level items.
func (cg *CodeGen) blank() {
	if cg.out.Len() > 0 {
		cg.out.WriteByte('\n')
	}
}

//  Types

func (cg *CodeGen) lookup(name string, line int) (Type, error) {
	t, ok := cg.types.Lookup(name)
	if !ok {
		return nil, errorf(KindResolve, line, "unknown type %s", name)
	}
	return t, nil
}

// resolveAuto resolves one level of named-type reference: Foo becomes its
// definition and *Foo becomes a pointer to it. Deeper pointers are left alone.
func (cg *CodeGen) resolveAuto(t Type, line int) (Type, error) {
	switch t := t.(type) {
	case *NamedType:
		return cg.lookup(t.Name, line)
	case *PointerType:
		if n, ok := t.Elem.(*NamedType); ok {
			elem, err := cg.lookup(n.Name, line)
			if err != nil {
				return nil, err
			}
			return &PointerType{Elem: elem}, nil
		}
	}
	return t, nil
}

//  Expressions

var cOperator = map[TokenType]string{
	AND: "&&",
	OR:  "||",
}

func operatorText(op TokenType) string {
	if s, ok := cOperator[op]; ok {
		return s
	}
	return opLexeme[op]
}

// operand renders a binary child, parenthesising binaries of the same or a
// looser tier so the C text keeps the parsed tree shape.
func (cg *CodeGen) operand(e Expr, parentTier int) string {
	if b, ok := e.(*BinaryExpr); ok && tierOf[b.Op] <= parentTier {
		return "(" + cg.expr(e) + ")"
	}
	return cg.expr(e)
}

// tight renders the operand of a prefix operator, a cast or a postfix
// suffix, parenthesising anything that would bind differently in C.
func (cg *CodeGen) tight(e Expr) string {
	switch x := e.(type) {
	case *BinaryExpr, *CastExpr, *RefExpr, *DerefExpr, *NotExpr, *NegateExpr, *BitNotExpr, *LabelRef:
		return "(" + cg.expr(e) + ")"
	case *IncDecExpr:
		if !x.Postfix {
			return "(" + cg.expr(e) + ")"
		}
	}
	return cg.expr(e)
}

func (cg *CodeGen) args(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = cg.expr(a)
	}
	return strings.Join(parts, ", ")
}

// expr renders e as a C expression.
func (cg *CodeGen) expr(e Expr) string {
	switch n := e.(type) {
	case *IntLiteral:
		return strconv.FormatInt(n.Value, 10)
	case *FloatLiteral:
		return formatFloat(n.Value)
	case *StringLiteral:
		return `"` + n.Value + `"`
	case *CharLiteral:
		return "'" + n.Value + "'"
	case *BoolLiteral:
		return strconv.FormatBool(n.Value)
	case *VarRef:
		return n.Name
	case *BinaryExpr:
		t := tierOf[n.Op]
		return cg.operand(n.Left, t) + " " + operatorText(n.Op) + " " + cg.operand(n.Right, t)
	case *MemberExpr:
		return cg.tight(n.Left) + "." + n.Member
	case *PtrMemberExpr:
		return cg.tight(n.Left) + "->" + n.Member
	case *MethodCall:
		obj := cg.tight(n.Object)
		args := obj
		if len(n.Args) > 0 {
			args += ", " + cg.args(n.Args)
		}
		return obj + "->" + n.Name + "(" + args + ")"
	case *CallExpr:
		return cg.tight(n.Callee) + "(" + cg.args(n.Args) + ")"
	case *RefExpr:
		return "&" + cg.tight(n.X)
	case *DerefExpr:
		return "*" + cg.tight(n.X)
	case *CastExpr:
		return "(" + Declarator(n.Type, "") + ")" + cg.tight(n.X)
	case *SizeofExpr:
		return "sizeof(" + Declarator(n.Type, "") + ")"
	case *AllocExpr:
		return "malloc(" + cg.expr(n.Size) + ")"
	case *IncDecExpr:
		op := "++"
		if n.Op == DEC {
			op = "--"
		}
		if n.Postfix {
			return cg.tight(n.X) + op
		}
		return op + cg.tight(n.X)
	case *NotExpr:
		return "!" + cg.tight(n.X)
	case *NegateExpr:
		return "-" + cg.tight(n.X)
	case *BitNotExpr:
		return "~" + cg.tight(n.X)
	case *IndexExpr:
		return cg.tight(n.Left) + "[" + cg.expr(n.Index) + "]"
	case *LabelRef:
		return "&&" + n.Name
	case *RawExpr:
		return n.Text
	}
	panic(fmt.Sprintf("unhandled expression %T", e))
}

//  Declarations

// decl renders d without its terminating ';'. The const, volatile and
// storage slots are always present, blank when unused.
func (cg *CodeGen) decl(d *VarDecl) (string, error) {
	var constStr, volatileStr, storageStr, initStr string
	if d.Const {
		constStr = "const"
	}
	if d.Volatile {
		volatileStr = "volatile"
	}
	if d.Storage != StorageAuto {
		storageStr = d.Storage.String()
	}

	if d.Init != nil {
		initStr = "= " + cg.expr(d.Init)
	}

	if d.Storage == StorageAuto {
		if cg.scopes.Depth() == 0 {
			return "", errorf(KindSemantic, d.Line, "auto variable %s declared outside a block", d.Name)
		}
		resolved, err := cg.resolveAuto(d.Type, d.Line)
		if err != nil {
			return "", err
		}
		if !cg.scopes.Declare(AutoVar{Name: d.Name, Type: resolved}) {
			return "", errorf(KindSemantic, d.Line, "auto variable %s already declared in this block", d.Name)
		}
		if d.Init == nil {
			switch st, ok := resolvedStruct(resolved); {
			case d.AutoSize != nil:
				initStr = "= malloc(" + cg.expr(d.AutoSize) + ")"
			case ok && st.Alloc != nil:
				initStr = "= " + st.Alloc.Name + "()"
			}
		}
	}

	return fmt.Sprintf("%s %s %s %s %s", constStr, volatileStr, storageStr, Declarator(d.Type, d.Name), initStr), nil
}

// cleanup renders the block-exit statement for an auto variable.
func cleanup(v AutoVar) string {
	if st, ok := resolvedStruct(v.Type); ok && st.Free != nil {
		return st.Free.Name + "(" + v.Name + ");"
	}
	return "free(" + v.Name + ");"
}

func params(ps []Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = Declarator(p.Type, p.Name)
		if p.Const {
			parts[i] = "const " + parts[i]
		}
	}
	return strings.Join(parts, ", ")
}

// genFunc emits a procedure or function definition. The body is one cleanup
// scope, whether or not it was written as a begin ... end block.
func (cg *CodeGen) genFunc(head string, body Stmt) error {
	cg.blank()
	cg.line("%s {", head)
	if err := cg.genScoped(body); err != nil {
		return err
	}
	cg.line("}")
	return nil
}

func (cg *CodeGen) genTypeDecl(d *TypeDecl) error {
	cg.line("typedef %s;", Declarator(d.Type, d.Name))
	st, ok := d.Type.(*StructType)
	if !ok {
		return nil
	}
	if st.Alloc != nil {
		if err := cg.genStmt(st.Alloc); err != nil {
			return err
		}
	}
	if st.Free != nil {
		if err := cg.genStmt(st.Free); err != nil {
			return err
		}
	}
	return nil
}

//  Statements

// genBlockBody emits stmts inside a new cleanup scope, followed by the
// cleanups registered there in declaration order.
func (cg *CodeGen) genBlockBody(stmts []Stmt) error {
	cg.indent++
	cg.scopes.Push()
	for _, s := range stmts {
		if err := cg.genStmt(s); err != nil {
			return err
		}
	}
	for _, v := range cg.scopes.Pop() {
		cg.line("%s", cleanup(v))
	}
	cg.indent--
	return nil
}

// genScoped emits the body of a braced construct. A body that is not a
// block is treated as a block of one statement.
func (cg *CodeGen) genScoped(body Stmt) error {
	if b, ok := body.(*BlockStmt); ok {
		return cg.genBlockBody(b.Stmts)
	}
	return cg.genBlockBody([]Stmt{body})
}

func (cg *CodeGen) genIf(s *IfStmt, prefix string) error {
	cg.line("%sif (%s) {", prefix, cg.expr(s.Condition))
	if err := cg.genScoped(s.Body); err != nil {
		return err
	}
	switch e := s.ElseBody.(type) {
	case nil:
		cg.line("}")
	case *IfStmt:
		return cg.genIf(e, "} else ")
	default:
		cg.line("} else {")
		if err := cg.genScoped(e); err != nil {
			return err
		}
		cg.line("}")
	}
	return nil
}

func (cg *CodeGen) genFor(s *ForStmt) error {
	var init, cond, post string
	switch i := s.Init.(type) {
	case nil:
	case *VarDecl:
		if i.Storage == StorageAuto {
			return errorf(KindSemantic, i.Line, "auto variable %s not allowed in a for initializer", i.Name)
		}
		d, err := cg.decl(i)
		if err != nil {
			return err
		}
		init = d
	case *ExprStmt:
		init = cg.expr(i.Expr)
	}
	if s.Cond != nil {
		cond = " " + cg.expr(s.Cond)
	}
	if s.Post != nil {
		post = " " + cg.expr(s.Post)
	}
	cg.line("for (%s;%s;%s) {", init, cond, post)
	if err := cg.genScoped(s.Body); err != nil {
		return err
	}
	cg.line("}")
	return nil
}

func (cg *CodeGen) genSwitch(s *SwitchStmt) error {
	cg.line("switch (%s) {", cg.expr(s.Target))
	for _, c := range s.Cases {
		cg.line("case %s:", cg.expr(c.Value))
		cg.indent++
		if err := cg.genCaseBody(c.Body); err != nil {
			return err
		}
		if !c.Fallthrough {
			cg.line("break;")
		}
		cg.indent--
	}
	if s.Default != nil {
		cg.line("default:")
		cg.indent++
		if err := cg.genCaseBody(s.Default); err != nil {
			return err
		}
		cg.indent--
	}
	cg.line("}")
	return nil
}

// genCaseBody emits a case body. A lone declaration gets its own braces,
// since C does not allow a declaration directly after a case label.
func (cg *CodeGen) genCaseBody(body Stmt) error {
	if d, ok := body.(*VarDecl); ok {
		body = &BlockStmt{Stmts: []Stmt{d}}
	}
	return cg.genStmt(body)
}

func (cg *CodeGen) genStmt(s Stmt) error {
	switch n := s.(type) {
	case *VarDecl:
		d, err := cg.decl(n)
		if err != nil {
			return err
		}
		cg.line("%s;", d)

	case *TypeDecl:
		return cg.genTypeDecl(n)

	case *BlockStmt:
		cg.line("{")
		if err := cg.genBlockBody(n.Stmts); err != nil {
			return err
		}
		cg.line("}")

	case *IfStmt:
		return cg.genIf(n, "")

	case *WhileStmt:
		cg.line("while (%s) {", cg.expr(n.Condition))
		if err := cg.genScoped(n.Body); err != nil {
			return err
		}
		cg.line("}")

	case *DoWhileStmt:
		cg.line("do {")
		if err := cg.genScoped(n.Body); err != nil {
			return err
		}
		cg.line("} while (%s);", cg.expr(n.Condition))

	case *ForStmt:
		return cg.genFor(n)

	case *SwitchStmt:
		return cg.genSwitch(n)

	case *ReturnStmt:
		if n.Expr == nil {
			cg.line("return;")
		} else {
			cg.line("return %s;", cg.expr(n.Expr))
		}

	case *BreakStmt:
		cg.line("break;")

	case *ContinueStmt:
		cg.line("continue;")

	case *GotoStmt:
		cg.line("goto %s;", n.Label)

	case *GotoPtrStmt:
		cg.line("goto *%s;", cg.tight(n.Target))

	case *LabelStmt:
		cg.line("%s:", n.Name)

	case *AsmStmt:
		cg.line("asm(\"%s\");", n.Text)

	case *FreeStmt:
		cg.line("free(%s);", cg.expr(n.X))

	case *ExprStmt:
		cg.line("%s;", cg.expr(n.Expr))

	case *ProcDecl:
		return cg.genFunc(Declarator(TypeVoid, n.Name+"("+params(n.Params)+")"), n.Body)

	case *FuncDecl:
		return cg.genFunc(Declarator(n.Return, n.Name+"("+params(n.Params)+")"), n.Body)

	case *ImportStmt:
		return errorf(KindUnsupported, n.Line, "import %q: module imports are not supported", n.Name)

	case *RawStmt:
		cg.line("%s", n.Text)

	default:
		return fmt.Errorf("unhandled statement %T", s)
	}
	return nil
}

// Generate renders the program as C text. Type declarations are collected
// first, so a type may be used before the declaration that defines it.
func Generate(stmts []Stmt) (string, error) {
	return GenerateWith(stmts, NewTypeRegistry())
}

// GenerateWith renders stmts against types, adding the program's own type
// declarations to it. Existing entries win over new ones.
func GenerateWith(stmts []Stmt, types *TypeRegistry) (string, error) {
	for _, s := range stmts {
		if td, ok := s.(*TypeDecl); ok {
			types.Define(td.Name, td.Type)
		}
	}

	cg := newCodeGen(types)
	for _, s := range stmts {
		if err := cg.genStmt(s); err != nil {
			return "", err
		}
	}
	return cg.out.String(), nil
}

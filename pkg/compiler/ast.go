package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// IntLiteral is a decimal integer constant.
//
//	var x is int 10;
//	             ^^  IntLiteral{Value: 10}
type IntLiteral struct {
	Value int64
}

func (*IntLiteral) exprNode()        {}
func (l *IntLiteral) String() string { return strconv.FormatInt(l.Value, 10) }

// FloatLiteral is a decimal constant with a fractional part.
type FloatLiteral struct {
	Value float64
}

func (*FloatLiteral) exprNode()        {}
func (l *FloatLiteral) String() string { return formatFloat(l.Value) }

// formatFloat always leaves a '.' or exponent so C reads the value as a double.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// StringLiteral is a string constant "...". Value keeps escapes as written.
type StringLiteral struct {
	Value string
}

func (*StringLiteral) exprNode()        {}
func (s *StringLiteral) String() string { return `"` + s.Value + `"` }

// CharLiteral is a character constant 'c' or '\c'. Value keeps the escape as written.
type CharLiteral struct {
	Value string
}

func (*CharLiteral) exprNode()        {}
func (c *CharLiteral) String() string { return "'" + c.Value + "'" }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
}

func (*BoolLiteral) exprNode()        {}
func (b *BoolLiteral) String() string { return strconv.FormatBool(b.Value) }

// VarRef is a read of a named variable or function.
//
//	return x;
//	       ^  VarRef{Name: "x"}
type VarRef struct {
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// BinaryExpr represents Left Op Right. Every operator tier is
// right-associative, so a - b - c is Left=a, Right=(b - c).
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// MemberExpr represents Left.Member
type MemberExpr struct {
	Left   Expr
	Member string
}

func (*MemberExpr) exprNode()        {}
func (e *MemberExpr) String() string { return fmt.Sprintf("(%s.%s)", e.Left, e.Member) }

// PtrMemberExpr represents Left.*Member, which is Left->Member in C.
type PtrMemberExpr struct {
	Left   Expr
	Member string
}

func (*PtrMemberExpr) exprNode()        {}
func (e *PtrMemberExpr) String() string { return fmt.Sprintf("(%s.*%s)", e.Left, e.Member) }

// MethodCall represents the receiver call sugar Object:Name(Args).
//
//	list:push(4)   =>   list->push(list, 4)
type MethodCall struct {
	Object Expr
	Name   string
	Args   []Expr
}

func (*MethodCall) exprNode() {}
func (m *MethodCall) String() string {
	return fmt.Sprintf("MethodCall(%s:%s, args=%v)", m.Object, m.Name, m.Args)
}

// CallExpr represents Callee(Args). The callee is any expression.
type CallExpr struct {
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	return fmt.Sprintf("CallExpr(%s, args=%v)", c.Callee, c.Args)
}

// RefExpr represents ref X (address-of).
type RefExpr struct {
	X Expr
}

func (*RefExpr) exprNode()        {}
func (e *RefExpr) String() string { return fmt.Sprintf("(ref %s)", e.X) }

// DerefExpr represents deref X.
type DerefExpr struct {
	X Expr
}

func (*DerefExpr) exprNode()        {}
func (e *DerefExpr) String() string { return fmt.Sprintf("(deref %s)", e.X) }

// CastExpr represents X as Type.
type CastExpr struct {
	X    Expr
	Type Type
}

func (*CastExpr) exprNode()        {}
func (c *CastExpr) String() string { return fmt.Sprintf("(%s as %s)", c.X, c.Type) }

// SizeofExpr represents sizeof Type.
type SizeofExpr struct {
	Type Type
}

func (*SizeofExpr) exprNode()        {}
func (s *SizeofExpr) String() string { return fmt.Sprintf("(sizeof %s)", s.Type) }

// AllocExpr represents alloc Size, a heap request of Size bytes.
type AllocExpr struct {
	Size Expr
}

func (*AllocExpr) exprNode()        {}
func (a *AllocExpr) String() string { return fmt.Sprintf("(alloc %s)", a.Size) }

// IncDecExpr represents inc X, dec X, X inc and X dec.
type IncDecExpr struct {
	Op      TokenType // INC or DEC
	X       Expr
	Postfix bool
}

func (*IncDecExpr) exprNode() {}
func (e *IncDecExpr) String() string {
	if e.Postfix {
		return fmt.Sprintf("(%s %s)", e.X, e.Op)
	}
	return fmt.Sprintf("(%s %s)", e.Op, e.X)
}

// NotExpr represents !X.
type NotExpr struct {
	X Expr
}

func (*NotExpr) exprNode()        {}
func (e *NotExpr) String() string { return fmt.Sprintf("(! %s)", e.X) }

// NegateExpr represents -X.
type NegateExpr struct {
	X Expr
}

func (*NegateExpr) exprNode()        {}
func (e *NegateExpr) String() string { return fmt.Sprintf("(- %s)", e.X) }

// BitNotExpr represents ~X.
type BitNotExpr struct {
	X Expr
}

func (*BitNotExpr) exprNode()        {}
func (e *BitNotExpr) String() string { return fmt.Sprintf("(~ %s)", e.X) }

// IndexExpr represents Left[Index].
type IndexExpr struct {
	Left  Expr
	Index Expr
}

func (*IndexExpr) exprNode()        {}
func (e *IndexExpr) String() string { return fmt.Sprintf("(%s[%s])", e.Left, e.Index) }

// LabelRef represents labelref Name, the address of a label.
type LabelRef struct {
	Name string
}

func (*LabelRef) exprNode()        {}
func (l *LabelRef) String() string { return "labelref " + l.Name }

// RawExpr is a (*% ... *) insertion used as a value.
type RawExpr struct {
	Text string
}

func (*RawExpr) exprNode()        {}
func (r *RawExpr) String() string { return fmt.Sprintf("RawExpr(%q)", r.Text) }

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// StorageClass is the storage keyword of a declaration.
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageAuto
	StorageStatic
	StorageExtern
	StorageRegister
)

var storageNames = [...]string{
	StorageNone:     "",
	StorageAuto:     "auto",
	StorageStatic:   "static",
	StorageExtern:   "extern",
	StorageRegister: "register",
}

func (s StorageClass) String() string { return storageNames[s] }

// VarDecl represents
//
//	[volatile] [extern|static|auto[(size)]|register] [const] var Name is Type [Init]
//
// AutoSize is only meaningful for StorageAuto.
type VarDecl struct {
	Volatile bool
	Const    bool
	Storage  StorageClass
	AutoSize Expr // may be nil
	Name     string
	Type     Type
	Init     Expr // may be nil
	Line     int
}

func (*VarDecl) stmtNode() {}
func (d *VarDecl) String() string {
	var sb strings.Builder
	sb.WriteString("VarDecl(")
	if d.Volatile {
		sb.WriteString("volatile ")
	}
	if d.Storage != StorageNone {
		sb.WriteString(d.Storage.String())
		if d.AutoSize != nil {
			fmt.Fprintf(&sb, "(%s)", d.AutoSize)
		}
		sb.WriteByte(' ')
	}
	if d.Const {
		sb.WriteString("const ")
	}
	fmt.Fprintf(&sb, "%s is %s", d.Name, d.Type)
	if d.Init != nil {
		fmt.Fprintf(&sb, " = %s", d.Init)
	}
	sb.WriteByte(')')
	return sb.String()
}

// TypeDecl represents type Name is <struct|union|enum|alias>.
type TypeDecl struct {
	Name string
	Type Type
	Line int
}

func (*TypeDecl) stmtNode() {}
func (t *TypeDecl) String() string {
	return fmt.Sprintf("TypeDecl(%s is %s)", t.Name, t.Type)
}

// IfStmt represents if Condition Body [else ElseBody]
type IfStmt struct {
	Condition Expr
	Body      Stmt
	ElseBody  Stmt // may be nil
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.ElseBody != nil {
		return fmt.Sprintf("IfStmt(if %s then %s else %s)", i.Condition, i.Body, i.ElseBody)
	}
	return fmt.Sprintf("IfStmt(if %s then %s)", i.Condition, i.Body)
}

// WhileStmt represents while Condition Body
type WhileStmt struct {
	Condition Expr
	Body      Stmt
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", w.Condition, w.Body)
}

// DoWhileStmt represents do Body while Condition
type DoWhileStmt struct {
	Body      Stmt
	Condition Expr
}

func (*DoWhileStmt) stmtNode() {}
func (d *DoWhileStmt) String() string {
	return fmt.Sprintf("DoWhileStmt(do %s while %s)", d.Body, d.Condition)
}

// ForStmt represents for Init; Cond; Post Body. Any clause may be nil.
// Init is a *VarDecl or an *ExprStmt.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
}

func (*ForStmt) stmtNode() {}
func (f *ForStmt) String() string {
	return fmt.Sprintf("ForStmt(init=%v, cond=%v, post=%v, body=%s)", f.Init, f.Cond, f.Post, f.Body)
}

// ReturnStmt represents return [Expr];
type ReturnStmt struct {
	Expr Expr // may be nil
}

func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	if r.Expr == nil {
		return "ReturnStmt()"
	}
	return fmt.Sprintf("ReturnStmt(%s)", r.Expr)
}

// BreakStmt represents break;
type BreakStmt struct{}

func (*BreakStmt) stmtNode()        {}
func (s *BreakStmt) String() string { return "BreakStmt" }

// ContinueStmt represents continue;
type ContinueStmt struct{}

func (*ContinueStmt) stmtNode()        {}
func (s *ContinueStmt) String() string { return "ContinueStmt" }

// BlockStmt represents begin statement ... end. Each block is one cleanup scope.
type BlockStmt struct {
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}
func (b *BlockStmt) String() string {
	return fmt.Sprintf("BlockStmt(len=%d)", len(b.Stmts))
}

// CaseClause represents case Value : Body [next]
type CaseClause struct {
	Value       Expr
	Body        Stmt
	Fallthrough bool // set by a trailing next
}

// SwitchStmt represents switch Target begin Cases... [default : Default] end
type SwitchStmt struct {
	Target  Expr
	Cases   []CaseClause
	Default Stmt // may be nil
}

func (*SwitchStmt) stmtNode() {}
func (s *SwitchStmt) String() string {
	return fmt.Sprintf("SwitchStmt(target=%s, cases=%d, default=%t)", s.Target, len(s.Cases), s.Default != nil)
}

// GotoStmt represents goto Label;
type GotoStmt struct {
	Label string
}

func (*GotoStmt) stmtNode()        {}
func (g *GotoStmt) String() string { return fmt.Sprintf("GotoStmt(%s)", g.Label) }

// GotoPtrStmt represents gotoptr Target; a jump through a label address.
type GotoPtrStmt struct {
	Target Expr
}

func (*GotoPtrStmt) stmtNode()        {}
func (g *GotoPtrStmt) String() string { return fmt.Sprintf("GotoPtrStmt(%s)", g.Target) }

// LabelStmt represents label Name :
type LabelStmt struct {
	Name string
}

func (*LabelStmt) stmtNode()        {}
func (l *LabelStmt) String() string { return fmt.Sprintf("LabelStmt(%s)", l.Name) }

// AsmStmt represents asm "text";
type AsmStmt struct {
	Text string
}

func (*AsmStmt) stmtNode()        {}
func (a *AsmStmt) String() string { return fmt.Sprintf("AsmStmt(%q)", a.Text) }

// FreeStmt represents free X;
type FreeStmt struct {
	X Expr
}

func (*FreeStmt) stmtNode()        {}
func (f *FreeStmt) String() string { return fmt.Sprintf("FreeStmt(%s)", f.X) }

// ExprStmt represents an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}
func (e *ExprStmt) String() string {
	return fmt.Sprintf("ExprStmt(%s)", e.Expr)
}

// Param is one entry of a procedure or function parameter list.
type Param struct {
	Const bool
	Name  string
	Type  Type
}

func (p Param) String() string {
	if p.Const {
		return fmt.Sprintf("const %s is %s", p.Name, p.Type)
	}
	return fmt.Sprintf("%s is %s", p.Name, p.Type)
}

// ProcDecl represents proc Name(Params) is Body. Procedures return nothing.
type ProcDecl struct {
	Name   string
	Params []Param
	Body   Stmt
	Line   int
}

func (*ProcDecl) stmtNode() {}
func (p *ProcDecl) String() string {
	return fmt.Sprintf("ProcDecl(%s, params=%v, body=%s)", p.Name, p.Params, p.Body)
}

// FuncDecl represents func Name(Params) Return is Body.
type FuncDecl struct {
	Name   string
	Params []Param
	Return Type
	Body   Stmt
	Line   int
}

func (*FuncDecl) stmtNode() {}
func (f *FuncDecl) String() string {
	return fmt.Sprintf("FuncDecl(%s %s, params=%v, body=%s)", f.Return, f.Name, f.Params, f.Body)
}

// ImportStmt represents import "Name". It is parsed but has no generation rule.
type ImportStmt struct {
	Name string
	Line int
}

func (*ImportStmt) stmtNode()        {}
func (i *ImportStmt) String() string { return fmt.Sprintf("ImportStmt(%q)", i.Name) }

// RawStmt is a (*% ... *) insertion standing on its own.
type RawStmt struct {
	Text string
}

func (*RawStmt) stmtNode()        {}
func (r *RawStmt) String() string { return fmt.Sprintf("RawStmt(%q)", r.Text) }

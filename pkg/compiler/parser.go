package compiler

import (
	"strconv"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = (decl ";" | typeDecl | import | proc | func | RAW)* EOF
//	decl       = ["volatile"] ["extern"|"static"|"auto" ["(" expr ")"]|"register"] ["const"]
//	             "var" IDENTIFIER "is" type [expr]
//	typeDecl   = "type" IDENTIFIER "is" (struct | union | enum | "alias" type) [";"]
//	struct     = "struct" (field | proc | func | "alloc" "is" stmt | "free" "(" IDENTIFIER ")" "is" stmt)* "end"
//	proc       = "proc" IDENTIFIER params "is" stmt
//	func       = "func" IDENTIFIER params type "is" stmt
//	params     = "(" [["const"] IDENTIFIER "is" type ("," ...)*] ")"
//	type       = "*"* (primitive | IDENTIFIER | "proc" "(" types ")" | "func" "(" types ")" type)
//	statement  = decl ";" | if | while | do | for | switch | goto | gotoptr | return
//	           | break | continue | label | asm | free | block | RAW | expr ";"
//	expression = tier[0]
//	tier[n]    = tier[n+1] (op[n] tier[n])*        every tier recurses into itself: right-assoc
//	unary      = ("ref"|"deref"|"inc"|"dec"|"!"|"-"|"~") unary | postfix
//	postfix    = primary ("(" args ")" | "[" expr "]" | "." IDENT | ".*" IDENT
//	           | ":" IDENT "(" args ")" | "as" type | "inc" | "dec")*
//	primary    = INT | FLOAT | STRING | CHAR | "true" | "false" | IDENTIFIER
//	           | "labelref" IDENTIFIER | "(" expr ")" | "alloc" expr | "sizeof" type | RAW
type Parser struct {
	tokens []Token
	pos    int

	// caseValue is set while parsing a case label so that the ':' ending
	// the label is not taken for a method call.
	caseValue bool
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// fail builds a syntax error at tok. Failures at EOF are marked incomplete.
func (p *Parser) fail(tok Token, format string, args ...any) error {
	err := errorf(KindSyntax, tok.Line, format, args...)
	err.Incomplete = tok.Type == EOF
	return err
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		line := 0
		if n := len(p.tokens); n > 0 {
			line = p.tokens[n-1].Line
		}
		return Token{Type: EOF, Line: line}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// accept consumes the current token if it is tt.
func (p *Parser) accept(tt TokenType) bool {
	if p.peek().Type != tt {
		return false
	}
	p.advance()
	return true
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.fail(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return p.advance(), nil
}

//  Expressions

// tier is one level of the binary precedence cascade, loosest first.
type tier struct {
	ops        []TokenType
	rightAssoc bool
}

var binaryTiers = []tier{
	{ops: []TokenType{ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN,
		SHL_ASSIGN, SHR_ASSIGN, AMP_ASSIGN, CARET_ASSIGN, PIPE_ASSIGN}, rightAssoc: true},
	{ops: []TokenType{OR}, rightAssoc: true},
	{ops: []TokenType{AND}, rightAssoc: true},
	{ops: []TokenType{PIPE}, rightAssoc: true},
	{ops: []TokenType{CARET}, rightAssoc: true},
	{ops: []TokenType{AMP}, rightAssoc: true},
	{ops: []TokenType{EQUALS, NOT_EQ}, rightAssoc: true},
	{ops: []TokenType{LESS, GREATER, LESS_EQ, GREATER_EQ}, rightAssoc: true},
	{ops: []TokenType{SHL_OP, SHR_OP}, rightAssoc: true},
	{ops: []TokenType{PLUS, MINUS}, rightAssoc: true},
	{ops: []TokenType{STAR, SLASH, PERCENT}, rightAssoc: true},
}

// tierOf maps each binary operator to its index in binaryTiers.
var tierOf = func() map[TokenType]int {
	m := make(map[TokenType]int)
	for i, t := range binaryTiers {
		for _, op := range t.ops {
			m[op] = i
		}
	}
	return m
}()

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseBinary(0)
}

// parseNested parses an expression inside brackets, where a ':' can only
// start a method call again.
func (p *Parser) parseNested() (Expr, error) {
	saved := p.caseValue
	p.caseValue = false
	expr, err := p.parseExpression()
	p.caseValue = saved
	return expr, err
}

// parseBinary parses the tier at level and everything that binds tighter.
// A right-associative tier parses its right operand at the same level, so
// a - b - c becomes a - (b - c).
func (p *Parser) parseBinary(level int) (Expr, error) {
	if level == len(binaryTiers) {
		return p.parseUnary()
	}
	expr, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		lvl, ok := tierOf[p.peek().Type]
		if !ok || lvl != level {
			return expr, nil
		}
		op := p.advance().Type
		next := level + 1
		if binaryTiers[level].rightAssoc {
			next = level
		}
		right, err := p.parseBinary(next)
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

// parseUnary handles the prefix operators, each nesting to the right.
func (p *Parser) parseUnary() (Expr, error) {
	tt := p.peek().Type
	switch tt {
	case REF, DEREF, INC, DEC, NOT, MINUS, TILDE:
	default:
		return p.parsePostfix()
	}
	p.advance()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	switch tt {
	case REF:
		return &RefExpr{X: x}, nil
	case DEREF:
		return &DerefExpr{X: x}, nil
	case INC, DEC:
		return &IncDecExpr{Op: tt, X: x}, nil
	case NOT:
		return &NotExpr{X: x}, nil
	case MINUS:
		return &NegateExpr{X: x}, nil
	default:
		return &BitNotExpr{X: x}, nil
	}
}

// parsePostfix handles a primary followed by any chain of suffixes.
func (p *Parser) parsePostfix() (Expr, error) {
	if p.peek().Type == RAW {
		return &RawExpr{Text: p.advance().Lexeme}, nil
	}
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case LPAREN:
			p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Callee: expr, Args: args}
		case LBRACKET:
			p.advance()
			index, err := p.parseNested()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Left: expr, Index: index}
		case DOT:
			p.advance()
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = &MemberExpr{Left: expr, Member: name.Lexeme}
		case DOT_STAR:
			p.advance()
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = &PtrMemberExpr{Left: expr, Member: name.Lexeme}
		case COLON:
			if p.caseValue {
				return expr, nil
			}
			p.advance()
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(LPAREN); err != nil {
				return nil, err
			}
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &MethodCall{Object: expr, Name: name.Lexeme, Args: args}
		case AS:
			p.advance()
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			expr = &CastExpr{X: expr, Type: t}
		case INC, DEC:
			expr = &IncDecExpr{Op: p.advance().Type, X: expr, Postfix: true}
		default:
			return expr, nil
		}
	}
}

// parseCallArgs parses a comma-separated argument list. The opening '('
// must already have been consumed.
func (p *Parser) parseCallArgs() ([]Expr, error) {
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseNested()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary handles literals, names, parenthesised expressions, alloc and sizeof.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INT_LIT:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.fail(tok, "integer literal %s out of range", tok.Lexeme)
		}
		return &IntLiteral{Value: v}, nil
	case FLOAT_LIT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fail(tok, "invalid float literal %s", tok.Lexeme)
		}
		return &FloatLiteral{Value: v}, nil
	case STRING:
		p.advance()
		return &StringLiteral{Value: tok.Lexeme}, nil
	case CHAR_LIT:
		p.advance()
		return &CharLiteral{Value: tok.Lexeme}, nil
	case TRUE, FALSE:
		p.advance()
		return &BoolLiteral{Value: tok.Type == TRUE}, nil
	case IDENTIFIER:
		p.advance()
		return &VarRef{Name: tok.Lexeme}, nil
	case LABELREF:
		p.advance()
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		return &LabelRef{Name: name.Lexeme}, nil
	case LPAREN:
		p.advance()
		expr, err := p.parseNested()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case ALLOC:
		p.advance()
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &AllocExpr{Size: size}, nil
	case SIZEOF:
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &SizeofExpr{Type: t}, nil
	}
	return nil, p.fail(tok, "unexpected token %s (%q) in expression", tok.Type, tok.Lexeme)
}

//  Types

// parseType parses leading pointer markers and a base type. Each '*' wraps
// the base one level deeper: ***T is pointer(pointer(pointer(T))).
func (p *Parser) parseType() (Type, error) {
	depth := 0
	for p.accept(STAR) {
		depth++
	}

	tok := p.peek()
	var t Type
	if prim, ok := primitiveByToken[tok.Type]; ok {
		p.advance()
		t = prim
	} else {
		switch tok.Type {
		case IDENTIFIER:
			p.advance()
			t = &NamedType{Name: tok.Lexeme}
		case PROC:
			p.advance()
			params, err := p.parseTypeList()
			if err != nil {
				return nil, err
			}
			t = &ProcType{Params: params}
		case FUNC:
			p.advance()
			params, err := p.parseTypeList()
			if err != nil {
				return nil, err
			}
			ret, err := p.parseType()
			if err != nil {
				return nil, err
			}
			t = &FuncType{Params: params, Return: ret}
		default:
			return nil, p.fail(tok, "expected type, got %s (%q)", tok.Type, tok.Lexeme)
		}
	}

	for i := 0; i < depth; i++ {
		t = &PointerType{Elem: t}
	}
	return t, nil
}

// parseTypeList parses "(" [type ("," type)*] ")" for proc and func types.
func (p *Parser) parseTypeList() ([]Type, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var types []Type
	if p.peek().Type != RPAREN {
		for {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			types = append(types, t)
			if !p.accept(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return types, nil
}

//  Declarations

func (p *Parser) seeDecl() bool {
	switch p.peek().Type {
	case VAR, CONST, VOLATILE, EXTERN, STATIC, AUTO, REGISTER:
		return true
	}
	return false
}

// parseVarDecl parses a declaration without its terminating ';'.
func (p *Parser) parseVarDecl() (*VarDecl, error) {
	d := &VarDecl{Line: p.peek().Line}
	d.Volatile = p.accept(VOLATILE)

	switch p.peek().Type {
	case EXTERN:
		p.advance()
		d.Storage = StorageExtern
	case STATIC:
		p.advance()
		d.Storage = StorageStatic
	case REGISTER:
		p.advance()
		d.Storage = StorageRegister
	case AUTO:
		p.advance()
		d.Storage = StorageAuto
		if p.accept(LPAREN) {
			size, err := p.parseNested()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			d.AutoSize = size
		}
	}

	d.Const = p.accept(CONST)
	if _, err := p.expect(VAR); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	d.Name = name.Lexeme
	if _, err := p.expect(IS); err != nil {
		return nil, err
	}
	if d.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	if p.peek().Type != SEMICOLON {
		if d.Init, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// parseParams parses a parenthesised parameter list.
func (p *Parser) parseParams() ([]Param, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var params []Param
	if p.peek().Type != RPAREN {
		for {
			var prm Param
			prm.Const = p.accept(CONST)
			name, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			prm.Name = name.Lexeme
			if _, err := p.expect(IS); err != nil {
				return nil, err
			}
			if prm.Type, err = p.parseType(); err != nil {
				return nil, err
			}
			params = append(params, prm)
			if !p.accept(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

// parseProcDecl parses proc name(params) is body
func (p *Parser) parseProcDecl() (*ProcDecl, error) {
	kw, err := p.expect(PROC)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IS); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ProcDecl{Name: name.Lexeme, Params: params, Body: body, Line: kw.Line}, nil
}

// parseFuncDecl parses func name(params) RetType is body
func (p *Parser) parseFuncDecl() (*FuncDecl, error) {
	kw, err := p.expect(FUNC)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IS); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Name: name.Lexeme, Params: params, Return: ret, Body: body, Line: kw.Line}, nil
}

// parseTypeDecl parses type Name is (struct | union | enum | alias T).
func (p *Parser) parseTypeDecl() (Stmt, error) {
	kw, err := p.expect(TYPE)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IS); err != nil {
		return nil, err
	}

	var t Type
	tok := p.peek()
	switch tok.Type {
	case STRUCT:
		p.advance()
		t, err = p.parseStructBody(name.Lexeme)
	case UNION:
		p.advance()
		var fields []Field
		fields, err = p.parseFields(name.Lexeme)
		t = &UnionType{Fields: fields}
	case ENUM:
		p.advance()
		t, err = p.parseEnumBody()
	case ALIAS:
		p.advance()
		t, err = p.parseType()
	default:
		return nil, p.fail(tok, "expected struct, union, enum, or alias, got %s (%q)", tok.Type, tok.Lexeme)
	}
	if err != nil {
		return nil, err
	}
	p.accept(SEMICOLON)
	return &TypeDecl{Name: name.Lexeme, Type: t, Line: kw.Line}, nil
}

// parseStructBody parses struct members up to and including 'end'.
func (p *Parser) parseStructBody(name string) (*StructType, error) {
	st := &StructType{Name: name}
	seen := make(map[string]bool)
	self := &PointerType{Elem: &NamedType{Name: name}}

	for p.peek().Type != END {
		tok := p.peek()
		switch tok.Type {
		case IDENTIFIER:
			f, err := p.parseField()
			if err != nil {
				return nil, err
			}
			if seen[f.Name] {
				return nil, p.fail(tok, "duplicate field %s in %s", f.Name, name)
			}
			seen[f.Name] = true
			st.Fields = append(st.Fields, f)
		case PROC:
			proc, err := p.parseProcDecl()
			if err != nil {
				return nil, err
			}
			st.Methods = append(st.Methods, proc)
		case FUNC:
			fn, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			st.Methods = append(st.Methods, fn)
		case ALLOC:
			if st.Alloc != nil {
				return nil, p.fail(tok, "alloc function already defined for %s", name)
			}
			p.advance()
			if _, err := p.expect(IS); err != nil {
				return nil, err
			}
			body, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			st.Alloc = &FuncDecl{Name: name + "_alloc", Return: self, Body: body, Line: tok.Line}
		case FREE:
			if st.Free != nil {
				return nil, p.fail(tok, "free function already defined for %s", name)
			}
			p.advance()
			if _, err := p.expect(LPAREN); err != nil {
				return nil, err
			}
			this, err := p.expect(IDENTIFIER)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			if _, err := p.expect(IS); err != nil {
				return nil, err
			}
			body, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			st.Free = &ProcDecl{
				Name:   name + "_free",
				Params: []Param{{Name: this.Lexeme, Type: self}},
				Body:   body,
				Line:   tok.Line,
			}
		default:
			return nil, p.fail(tok, "expected field, proc, func, alloc or free in %s, got %s (%q)", name, tok.Type, tok.Lexeme)
		}
	}
	p.advance() // end
	return st, nil
}

// parseField parses name is Type;
func (p *Parser) parseField() (Field, error) {
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return Field{}, err
	}
	if _, err := p.expect(IS); err != nil {
		return Field{}, err
	}
	t, err := p.parseType()
	if err != nil {
		return Field{}, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return Field{}, err
	}
	return Field{Name: name.Lexeme, Type: t}, nil
}

// parseFields parses union fields up to and including 'end'.
func (p *Parser) parseFields(owner string) ([]Field, error) {
	var fields []Field
	seen := make(map[string]bool)
	for p.peek().Type != END {
		tok := p.peek()
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, p.fail(tok, "duplicate field %s in %s", f.Name, owner)
		}
		seen[f.Name] = true
		fields = append(fields, f)
	}
	p.advance() // end
	return fields, nil
}

// parseEnumBody parses "NAME;"* up to and including 'end'.
func (p *Parser) parseEnumBody() (*EnumType, error) {
	e := &EnumType{}
	for p.peek().Type != END {
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		e.Members = append(e.Members, name.Lexeme)
	}
	p.advance() // end
	return e, nil
}

//  Statements

func (p *Parser) parseBlock() (*BlockStmt, error) {
	if _, err := p.expect(BEGIN); err != nil {
		return nil, err
	}
	block := &BlockStmt{}
	for p.peek().Type != END {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	p.advance() // end
	return block, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // if
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseBody Stmt
	if p.accept(ELSE) {
		if elseBody, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return &IfStmt{Condition: cond, Body: body, ElseBody: elseBody}, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	p.advance() // while
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: cond, Body: body}, nil
}

func (p *Parser) parseDoWhile() (Stmt, error) {
	p.advance() // do
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(WHILE); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &DoWhileStmt{Body: body, Condition: cond}, nil
}

// parseFor parses for [init] ; [cond] ; [post] body. The post clause may
// only be left out when the body is a begin ... end block.
func (p *Parser) parseFor() (Stmt, error) {
	p.advance() // for
	fs := &ForStmt{}

	if p.peek().Type != SEMICOLON {
		if p.seeDecl() {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			fs.Init = decl
		} else {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			fs.Init = &ExprStmt{Expr: expr}
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}

	if p.peek().Type != SEMICOLON {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fs.Cond = cond
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}

	if p.peek().Type != BEGIN {
		post, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fs.Post = post
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	fs.Body = body
	return fs, nil
}

// parseSwitch parses switch x begin (case v : stmt [next])* [default : stmt] end
func (p *Parser) parseSwitch() (Stmt, error) {
	p.advance() // switch
	target, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(BEGIN); err != nil {
		return nil, err
	}

	sw := &SwitchStmt{Target: target}
	for p.peek().Type != END && p.peek().Type != DEFAULT {
		if _, err := p.expect(CASE); err != nil {
			return nil, err
		}
		p.caseValue = true
		value, err := p.parseExpression()
		p.caseValue = false
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		sw.Cases = append(sw.Cases, CaseClause{Value: value, Body: body, Fallthrough: p.accept(NEXT)})
	}

	if p.accept(DEFAULT) {
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		if sw.Default, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(END); err != nil {
		return nil, err
	}
	return sw, nil
}

// parseTerminated parses an expression followed by ';'.
func (p *Parser) parseTerminated() (Expr, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return expr, nil
}

// rawContinues reports whether the token after a statement-leading RAW
// makes it part of an expression rather than a standalone insertion.
func (p *Parser) rawContinues() bool {
	next := p.peekAt(1).Type
	if next == SEMICOLON {
		return true
	}
	_, ok := tierOf[next]
	return ok
}

func (p *Parser) parseStatement() (Stmt, error) {
	if p.seeDecl() {
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return decl, nil
	}

	tok := p.peek()
	switch tok.Type {
	case BEGIN:
		return p.parseBlock()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case DO:
		return p.parseDoWhile()
	case FOR:
		return p.parseFor()
	case SWITCH:
		return p.parseSwitch()
	case GOTO:
		p.advance()
		label, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &GotoStmt{Label: label.Lexeme}, nil
	case GOTOPTR:
		p.advance()
		target, err := p.parseTerminated()
		if err != nil {
			return nil, err
		}
		return &GotoPtrStmt{Target: target}, nil
	case RETURN:
		p.advance()
		if p.accept(SEMICOLON) {
			return &ReturnStmt{}, nil
		}
		value, err := p.parseTerminated()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Expr: value}, nil
	case BREAK, CONTINUE:
		p.advance()
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		if tok.Type == BREAK {
			return &BreakStmt{}, nil
		}
		return &ContinueStmt{}, nil
	case LABEL:
		p.advance()
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		return &LabelStmt{Name: name.Lexeme}, nil
	case ASM:
		p.advance()
		text, err := p.expect(STRING)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &AsmStmt{Text: text.Lexeme}, nil
	case FREE:
		p.advance()
		x, err := p.parseTerminated()
		if err != nil {
			return nil, err
		}
		return &FreeStmt{X: x}, nil
	case RAW:
		if !p.rawContinues() {
			return &RawStmt{Text: p.advance().Lexeme}, nil
		}
	}

	expr, err := p.parseTerminated()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr}, nil
}

// parseTopLevel parses one file-level item.
func (p *Parser) parseTopLevel() (Stmt, error) {
	if p.seeDecl() {
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return decl, nil
	}

	tok := p.peek()
	switch tok.Type {
	case TYPE:
		return p.parseTypeDecl()
	case IMPORT:
		p.advance()
		name, err := p.expect(STRING)
		if err != nil {
			return nil, err
		}
		p.accept(SEMICOLON)
		return &ImportStmt{Name: name.Lexeme, Line: tok.Line}, nil
	case PROC:
		return p.parseProcDecl()
	case FUNC:
		return p.parseFuncDecl()
	case RAW:
		p.advance()
		return &RawStmt{Text: tok.Lexeme}, nil
	}
	return nil, p.fail(tok, "only decl, type, proc, func, or import allowed at top level, got %s (%q)", tok.Type, tok.Lexeme)
}

// Parse turns a token stream ending in EOF into the file's top-level items.
// It stops at the first grammar violation.
func Parse(tokens []Token) ([]Stmt, error) {
	p := NewParser(tokens)
	var stmts []Stmt
	for p.peek().Type != EOF {
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

package compiler

import (
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"proc":       PROC,
	"func":       FUNC,
	"is":         IS,
	"var":        VAR,
	"if":         IF,
	"else":       ELSE,
	"while":      WHILE,
	"for":        FOR,
	"return":     RETURN,
	"break":      BREAK,
	"continue":   CONTINUE,
	"begin":      BEGIN,
	"end":        END,
	"do":         DO,
	"and":        AND,
	"or":         OR,
	"true":       TRUE,
	"false":      FALSE,
	"auto":       AUTO,
	"sizeof":     SIZEOF,
	"ref":        REF,
	"deref":      DEREF,
	"enum":       ENUM,
	"register":   REGISTER,
	"static":     STATIC,
	"extern":     EXTERN,
	"const":      CONST,
	"struct":     STRUCT,
	"union":      UNION,
	"u8":         U8,
	"u16":        U16,
	"u32":        U32,
	"u64":        U64,
	"s8":         S8,
	"s16":        S16,
	"s32":        S32,
	"s64":        S64,
	"f32":        F32,
	"f64":        F64,
	"bool":       BOOL,
	"sbool":      SBOOL,
	"char":       CHAR,
	"int":        INT,
	"double":     DOUBLE,
	"float":      FLOAT,
	"long":       LONG,
	"longlong":   LONGLONG,
	"longdouble": LONGDOUBLE,
	"short":      SHORT,
	"void":       VOID,
	"volatile":   VOLATILE,
	"switch":     SWITCH,
	"case":       CASE,
	"default":    DEFAULT,
	"next":       NEXT,
	"goto":       GOTO,
	"gotoptr":    GOTOPTR,
	"alias":      ALIAS,
	"import":     IMPORT,
	"label":      LABEL,
	"type":       TYPE,
	"inc":        INC,
	"dec":        DEC,
	"to":         TO,
	"asm":        ASM,
	"alloc":      ALLOC,
	"free":       FREE,
	"labelref":   LABELREF,
	"as":         AS,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

// match consumes the current rune if it equals want.
func (l *Lexer) match(want rune) bool {
	if l.pos >= len(l.src) || l.src[l.pos] != want {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

// Identifiers and numbers are ASCII only, as they are copied into C.
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// scanComment consumes everything up to and including the closing "*)" and
// returns the enclosed text. The opening "(*" (and "%" for raw insertions)
// must already have been consumed.
func (l *Lexer) scanComment(startLine int, what string) (string, error) {
	start := l.pos
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == ')' {
			text := string(l.src[start:l.pos])
			l.advance() // *
			l.advance() // )
			return text, nil
		}
		l.advance()
	}
	err := errorf(KindLex, startLine, "unterminated %s", what)
	err.Incomplete = true
	return "", err
}

// scanIdent collects a full identifier or keyword token.
// The first character must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !isLetter(r) && !isDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanLiteralIdent collects a `backtick` identifier. Its contents are never
// matched against the keyword table.
func (l *Lexer) scanLiteralIdent() (Token, error) {
	line := l.line
	l.advance() // consume opening `
	start := l.pos
	for l.pos < len(l.src) && l.peek() != '`' {
		l.advance()
	}
	if l.atEnd() {
		err := errorf(KindLex, line, "unterminated literal identifier")
		err.Incomplete = true
		return Token{}, err
	}
	name := string(l.src[start:l.pos])
	l.advance() // consume closing `
	if name == "" {
		return Token{}, errorf(KindLex, line, "empty literal identifier")
	}
	return Token{Type: IDENTIFIER, Lexeme: name, Line: line}, nil
}

// scanNumber collects an integer literal, or a float literal when a '.' is
// directly followed by a digit. The first digit must still be at l.peek().
func (l *Lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance() // consume '.'
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
		return Token{Type: FLOAT_LIT, Lexeme: string(l.src[start:l.pos]), Line: line}
	}
	return Token{Type: INT_LIT, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// scanChar collects a character literal 'c' or '\c'. The escape is kept
// raw; it is reproduced as-is in the generated C.
func (l *Lexer) scanChar() (Token, error) {
	line := l.line
	l.advance() // consume opening '
	start := l.pos

	switch l.peek() {
	case '\'':
		return Token{}, errorf(KindLex, line, "empty character literal")
	case '\\':
		l.advance()
	}
	if l.atEnd() || l.peek() == '\n' {
		return Token{}, l.unterminatedChar(line)
	}
	l.advance()

	if l.peek() != '\'' {
		return Token{}, l.unterminatedChar(line)
	}
	text := string(l.src[start:l.pos])
	l.advance() // consume closing '
	return Token{Type: CHAR_LIT, Lexeme: text, Line: line}, nil
}

// unterminatedChar reports a character literal cut short. It is incomplete
// when the input ran out.
func (l *Lexer) unterminatedChar(line int) error {
	err := errorf(KindLex, line, "unterminated character literal")
	err.Incomplete = l.atEnd()
	return err
}

// scanString collects a string literal "...". Strings may span lines; a
// backslash protects the following character from ending the literal.
func (l *Lexer) scanString() (Token, error) {
	line := l.line
	l.advance() // consume opening "
	start := l.pos

	for l.pos < len(l.src) && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.atEnd() {
		err := errorf(KindLex, line, "unterminated string literal")
		err.Incomplete = true
		return Token{}, err
	}
	text := string(l.src[start:l.pos])
	l.advance() // consume closing "
	return Token{Type: STRING, Lexeme: text, Line: line}, nil
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.atEnd() {
			return Token{Type: EOF, Lexeme: "", Line: l.line}, nil
		}
		if l.peek() == '(' && l.peek2() == '*' {
			line := l.line
			l.advance()
			l.advance()
			if l.match('%') {
				text, err := l.scanComment(line, "raw insertion")
				if err != nil {
					return Token{}, err
				}
				return Token{Type: RAW, Lexeme: text, Line: line}, nil
			}
			if _, err := l.scanComment(line, "comment"); err != nil {
				return Token{}, err
			}
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if isLetter(ch) || ch == '_' {
		return l.scanIdent(), nil
	}
	if isDigit(ch) {
		return l.scanNumber(), nil
	}

	switch ch {
	case '"':
		return l.scanString()
	case '\'':
		return l.scanChar()
	case '`':
		return l.scanLiteralIdent()
	}

	// pick returns the compound token when the next rune is want.
	pick := func(want rune, compound, single TokenType) TokenType {
		if l.match(want) {
			return compound
		}
		return single
	}

	l.advance() // consume the character before the switch
	var tt TokenType
	switch ch {
	case '(':
		tt = LPAREN
	case ')':
		tt = RPAREN
	case '[':
		tt = LBRACKET
	case ']':
		tt = RBRACKET
	case ',':
		tt = COMMA
	case '.':
		tt = pick('*', DOT_STAR, DOT)
	case ':':
		tt = COLON
	case ';':
		tt = SEMICOLON
	case '+':
		tt = pick('=', PLUS_ASSIGN, PLUS)
	case '-':
		tt = pick('=', MINUS_ASSIGN, MINUS)
	case '*':
		tt = pick('=', STAR_ASSIGN, STAR)
	case '/':
		tt = pick('=', SLASH_ASSIGN, SLASH)
	case '%':
		tt = pick('=', PERCENT_ASSIGN, PERCENT)
	case '&':
		tt = pick('=', AMP_ASSIGN, AMP)
	case '|':
		tt = pick('=', PIPE_ASSIGN, PIPE)
	case '^':
		tt = pick('=', CARET_ASSIGN, CARET)
	case '~':
		tt = TILDE
	case '!':
		tt = pick('=', NOT_EQ, NOT)
	case '=':
		tt = pick('=', EQUALS, ASSIGN)
	case '<':
		switch {
		case l.match('='):
			tt = LESS_EQ
		case l.match('<'):
			tt = pick('=', SHL_ASSIGN, SHL_OP)
		default:
			tt = LESS
		}
	case '>':
		switch {
		case l.match('='):
			tt = GREATER_EQ
		case l.match('>'):
			tt = pick('=', SHR_ASSIGN, SHR_OP)
		default:
			tt = GREATER
		}
	default:
		return Token{}, errorf(KindLex, line, "unexpected character %q", ch)
	}
	return Token{Type: tt, Lexeme: opLexeme[tt], Line: line}, nil
}

// opLexeme is the fixed source spelling of every punctuation token.
var opLexeme = map[TokenType]string{
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]",
	COMMA: ",", DOT: ".", DOT_STAR: ".*", COLON: ":", SEMICOLON: ";",
	PLUS: "+", PLUS_ASSIGN: "+=", MINUS: "-", MINUS_ASSIGN: "-=",
	STAR: "*", STAR_ASSIGN: "*=", SLASH: "/", SLASH_ASSIGN: "/=",
	PERCENT: "%", PERCENT_ASSIGN: "%=",
	SHL_OP: "<<", SHL_ASSIGN: "<<=", SHR_OP: ">>", SHR_ASSIGN: ">>=",
	AMP: "&", AMP_ASSIGN: "&=", PIPE: "|", PIPE_ASSIGN: "|=",
	CARET: "^", CARET_ASSIGN: "^=", TILDE: "~",
	NOT: "!", NOT_EQ: "!=", ASSIGN: "=", EQUALS: "==",
	LESS: "<", LESS_EQ: "<=", GREATER: ">", GREATER_EQ: ">=",
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil *Error on the first illegal character or
// unterminated literal or comment.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

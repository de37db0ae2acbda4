package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // name, or `backtick` literal identifier
	INT_LIT    // decimal integer literal
	FLOAT_LIT  // decimal literal with a fractional part
	STRING     // string literal "..." (quotes stripped, escapes kept raw)
	CHAR_LIT   // character literal 'c' (quotes stripped, escapes kept raw)
	RAW        // (*% ... *) verbatim C insertion

	// Keywords
	PROC
	FUNC
	IS
	VAR
	IF
	ELSE
	WHILE
	FOR
	RETURN
	BREAK
	CONTINUE
	BEGIN
	END
	DO
	AND // logical "and"
	OR  // logical "or"
	TRUE
	FALSE
	AUTO
	SIZEOF
	REF
	DEREF
	ENUM
	REGISTER
	STATIC
	EXTERN
	CONST
	STRUCT
	UNION
	U8
	U16
	U32
	U64
	S8
	S16
	S32
	S64
	F32
	F64
	BOOL
	SBOOL
	CHAR
	INT
	DOUBLE
	FLOAT
	LONG
	LONGLONG
	LONGDOUBLE
	SHORT
	VOID
	VOLATILE
	SWITCH
	CASE
	DEFAULT
	NEXT
	GOTO
	GOTOPTR
	ALIAS
	IMPORT
	LABEL
	TYPE
	INC
	DEC
	TO
	ASM
	ALLOC
	FREE
	LABELREF
	AS

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	COMMA     // ,
	DOT       // .
	DOT_STAR  // .*
	COLON     // :
	SEMICOLON // ;

	// Operators
	PLUS           // +
	PLUS_ASSIGN    // +=
	MINUS          // -
	MINUS_ASSIGN   // -=
	STAR           // *
	STAR_ASSIGN    // *=
	SLASH          // /
	SLASH_ASSIGN   // /=
	PERCENT        // %
	PERCENT_ASSIGN // %=
	SHL_OP         // <<
	SHL_ASSIGN     // <<=
	SHR_OP         // >>
	SHR_ASSIGN     // >>=
	AMP            // &
	AMP_ASSIGN     // &=
	PIPE           // |
	PIPE_ASSIGN    // |=
	CARET          // ^
	CARET_ASSIGN   // ^=
	TILDE          // ~
	NOT            // !
	NOT_EQ         // !=
	ASSIGN         // =
	EQUALS         // ==
	LESS           // <
	LESS_EQ        // <=
	GREATER        // >
	GREATER_EQ     // >=

	tokenTypeCount
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:            "EOF",
	IDENTIFIER:     "IDENTIFIER",
	INT_LIT:        "INT_LIT",
	FLOAT_LIT:      "FLOAT_LIT",
	STRING:         "STRING",
	CHAR_LIT:       "CHAR_LIT",
	RAW:            "RAW",
	PROC:           "PROC",
	FUNC:           "FUNC",
	IS:             "IS",
	VAR:            "VAR",
	IF:             "IF",
	ELSE:           "ELSE",
	WHILE:          "WHILE",
	FOR:            "FOR",
	RETURN:         "RETURN",
	BREAK:          "BREAK",
	CONTINUE:       "CONTINUE",
	BEGIN:          "BEGIN",
	END:            "END",
	DO:             "DO",
	AND:            "AND",
	OR:             "OR",
	TRUE:           "TRUE",
	FALSE:          "FALSE",
	AUTO:           "AUTO",
	SIZEOF:         "SIZEOF",
	REF:            "REF",
	DEREF:          "DEREF",
	ENUM:           "ENUM",
	REGISTER:       "REGISTER",
	STATIC:         "STATIC",
	EXTERN:         "EXTERN",
	CONST:          "CONST",
	STRUCT:         "STRUCT",
	UNION:          "UNION",
	U8:             "U8",
	U16:            "U16",
	U32:            "U32",
	U64:            "U64",
	S8:             "S8",
	S16:            "S16",
	S32:            "S32",
	S64:            "S64",
	F32:            "F32",
	F64:            "F64",
	BOOL:           "BOOL",
	SBOOL:          "SBOOL",
	CHAR:           "CHAR",
	INT:            "INT",
	DOUBLE:         "DOUBLE",
	FLOAT:          "FLOAT",
	LONG:           "LONG",
	LONGLONG:       "LONGLONG",
	LONGDOUBLE:     "LONGDOUBLE",
	SHORT:          "SHORT",
	VOID:           "VOID",
	VOLATILE:       "VOLATILE",
	SWITCH:         "SWITCH",
	CASE:           "CASE",
	DEFAULT:        "DEFAULT",
	NEXT:           "NEXT",
	GOTO:           "GOTO",
	GOTOPTR:        "GOTOPTR",
	ALIAS:          "ALIAS",
	IMPORT:         "IMPORT",
	LABEL:          "LABEL",
	TYPE:           "TYPE",
	INC:            "INC",
	DEC:            "DEC",
	TO:             "TO",
	ASM:            "ASM",
	ALLOC:          "ALLOC",
	FREE:           "FREE",
	LABELREF:       "LABELREF",
	AS:             "AS",
	LPAREN:         "LPAREN",
	RPAREN:         "RPAREN",
	LBRACKET:       "LBRACKET",
	RBRACKET:       "RBRACKET",
	COMMA:          "COMMA",
	DOT:            "DOT",
	DOT_STAR:       "DOT_STAR",
	COLON:          "COLON",
	SEMICOLON:      "SEMICOLON",
	PLUS:           "PLUS",
	PLUS_ASSIGN:    "PLUS_ASSIGN",
	MINUS:          "MINUS",
	MINUS_ASSIGN:   "MINUS_ASSIGN",
	STAR:           "STAR",
	STAR_ASSIGN:    "STAR_ASSIGN",
	SLASH:          "SLASH",
	SLASH_ASSIGN:   "SLASH_ASSIGN",
	PERCENT:        "PERCENT",
	PERCENT_ASSIGN: "PERCENT_ASSIGN",
	SHL_OP:         "SHL_OP",
	SHL_ASSIGN:     "SHL_ASSIGN",
	SHR_OP:         "SHR_OP",
	SHR_ASSIGN:     "SHR_ASSIGN",
	AMP:            "AMP",
	AMP_ASSIGN:     "AMP_ASSIGN",
	PIPE:           "PIPE",
	PIPE_ASSIGN:    "PIPE_ASSIGN",
	CARET:          "CARET",
	CARET_ASSIGN:   "CARET_ASSIGN",
	TILDE:          "TILDE",
	NOT:            "NOT",
	NOT_EQ:         "NOT_EQ",
	ASSIGN:         "ASSIGN",
	EQUALS:         "EQUALS",
	LESS:           "LESS",
	LESS_EQ:        "LESS_EQ",
	GREATER:        "GREATER",
	GREATER_EQ:     "GREATER_EQ",
}

// Every TokenType below tokenTypeCount must have a name.
var _ [len(tokenNames) - int(tokenTypeCount)]struct{}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // source text; literal payload for STRING, CHAR_LIT and RAW
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

// Package compiler provides the dawn lexer, parser, and code generator
// that transpiles dawn source to C.
//
// Pipeline: dawn source → Lex → Parse → Generate → C text
package compiler

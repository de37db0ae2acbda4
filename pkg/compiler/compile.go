package compiler

// Compile runs the whole pipeline on one source unit and returns the C text.
// Errors are *Error values carrying the offending source line.
func Compile(src string) (string, error) {
	return compileWith(src, NewTypeRegistry())
}

func compileWith(src string, types *TypeRegistry) (string, error) {
	tokens, err := Lex(src)
	if err != nil {
		return "", WithSource(err, src)
	}

	stmts, err := Parse(tokens)
	if err != nil {
		return "", WithSource(err, src)
	}

	out, err := GenerateWith(stmts, types)
	if err != nil {
		return "", WithSource(err, src)
	}
	return out, nil
}

// Session transpiles a sequence of inputs that share type declarations, as
// an interactive console does. Each input is otherwise independent.
type Session struct {
	types *TypeRegistry
}

func NewSession() *Session {
	return &Session{types: NewTypeRegistry()}
}

// Transpile compiles src against the types declared by earlier inputs.
// Type declarations from src are kept only if the whole input succeeds.
func (s *Session) Transpile(src string) (string, error) {
	types := s.types.Clone()
	out, err := compileWith(src, types)
	if err != nil {
		return "", err
	}
	s.types = types
	return out, nil
}

// Types returns the registry of types declared so far.
func (s *Session) Types() *TypeRegistry { return s.types }

// Reset forgets every declared type.
func (s *Session) Reset() { s.types = NewTypeRegistry() }

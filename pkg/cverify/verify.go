// Package cverify checks that generated C text is a syntactically valid
// translation unit, using the modernc.org/cc front end.
package cverify

import (
	"fmt"
	"strings"

	"modernc.org/cc/v3"
)

// prelude declares the library functions generated code calls without
// including their headers.
const prelude = `void *malloc(unsigned long);
void free(void *);
`

// Report summarises a verified translation unit.
type Report struct {
	Functions []string // function definitions, in source order
}

// stripIncludes blanks out #include lines so that system headers are not
// needed. Line numbers are preserved.
func stripIncludes(src string) string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "#include") {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// Check parses src, reporting the first C syntax error. name is used in
// error positions.
func Check(name, src string) (*Report, error) {
	ast, err := cc.Parse(&cc.Config{}, nil, nil, []cc.Source{
		{Name: "<prelude>", Value: prelude, DoNotCache: true},
		{Name: name, Value: stripIncludes(src), DoNotCache: true},
	})
	if err != nil {
		return nil, fmt.Errorf("cverify: %w", err)
	}

	r := &Report{}
	if ast == nil {
		return r, nil
	}
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		ed := tu.ExternalDeclaration
		if ed == nil || ed.FunctionDefinition == nil {
			continue
		}
		r.Functions = append(r.Functions, ed.FunctionDefinition.Declarator.Name().String())
	}
	return r, nil
}

package main

import (
	"fmt"
	"os"

	"dawn/pkg/compiler"
)

const testSource = `type Buf is struct
    data is *u8;
    alloc is return alloc sizeof Buf;
end

proc main() is begin
    auto var b is *Buf;
    auto(16) var tmp is *char;
    b.*data = tmp as *u8;
end
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.WithSource(err, src))
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	stmts, err := compiler.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.WithSource(err, src))
		os.Exit(1)
	}

	fmt.Println("AST")
	for _, s := range stmts {
		fmt.Println(" ", s)
	}
	fmt.Println()

	// code generation
	types := compiler.NewTypeRegistry()
	code, err := compiler.GenerateWith(stmts, types)
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.WithSource(err, src))
		os.Exit(1)
	}

	fmt.Println("Generated C")
	fmt.Print(code)
	fmt.Println()
	fmt.Print(types)
}

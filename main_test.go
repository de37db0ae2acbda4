package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dawn/pkg/compiler"
)

func TestSamples(t *testing.T) {
	paths, err := filepath.Glob("_samples/*.dawn")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no samples found")
	}

	expected := map[string][]string{
		"stack.dawn": {
			"typedef struct { int* items; int top; } Stack;",
			"s->items = malloc(64 * sizeof(int));",
			"s->items[s->top] = v;",
			"Stack* s = Stack_alloc();",
			"char* name = malloc(32);",
			"Stack_free(s);",
			"free(name);",
		},
		"shapes.dawn": {
			"typedef enum { CIRCLE, SQUARE } Kind;",
			"typedef double (*Area)(double);",
			"Area fn = square;",
			"v.f = fn(2.0);",
			"score = -1;",
		},
	}

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			out, err := transpileFile(path, options{verify: true})
			if err != nil {
				t.Fatalf("transpile failed: %v", err)
			}
			for _, want := range expected[filepath.Base(path)] {
				if !strings.Contains(out, want) {
					t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", want, out)
				}
			}
		})
	}
}

func TestTranspileAll(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	a := write("a.dawn", "var a is int 1;")
	b := write("b.dawn", "var b is int 2;")

	outs, err := transpileAll(context.Background(), []string{a, b}, options{})
	if err != nil {
		t.Fatalf("transpileAll failed: %v", err)
	}
	if len(outs) != 2 || !strings.Contains(outs[0], "int a = 1") || !strings.Contains(outs[1], "int b = 2") {
		t.Errorf("outputs out of order: %q", outs)
	}

	bad := write("bad.dawn", "var x is int 1;\nproc p() is begin\n  y = ;\nend")
	_, err = transpileAll(context.Background(), []string{a, bad}, options{})
	if err == nil {
		t.Fatal("expected an error from bad.dawn")
	}
	if !strings.Contains(err.Error(), "bad.dawn") {
		t.Errorf("error should name the file: %v", err)
	}
	if compiler.KindOf(err) != compiler.KindSyntax {
		t.Errorf("KindOf = %q, want syntax", compiler.KindOf(err))
	}
}

func TestTranspileMissingFile(t *testing.T) {
	_, err := transpileFile(filepath.Join(t.TempDir(), "missing.dawn"), options{})
	if err == nil || !strings.Contains(err.Error(), "failed to read input file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, dir, want string
	}{
		{"main.dawn", "", "main.c"},
		{"src/list.dawn", "", "src/list.c"},
		{"noext", "", "noext.c"},
		{"src/list.dawn", "build", filepath.Join("build", "list.c")},
	}
	for _, tt := range tests {
		if got := outputPath(tt.in, tt.dir); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.in, tt.dir, got, tt.want)
		}
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"dawn/pkg/compiler"
	"dawn/pkg/cverify"
)

type options struct {
	outDir  string
	stdout  bool
	verify  bool
	verbose bool
}

func main() {
	var opts options
	flag.StringVar(&opts.outDir, "o", "", "output directory (default: next to each input)")
	flag.BoolVar(&opts.stdout, "stdout", false, "print generated C to stdout instead of writing files")
	flag.BoolVar(&opts.verify, "verify", false, "check that the generated C parses")
	flag.BoolVar(&opts.verbose, "v", false, "log per-file timing to stderr")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: dawn [-o dir] [-stdout] [-verify] [-v] file.dawn...")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log.SetFlags(0)
	log.SetPrefix("dawn: ")

	outputs, err := transpileAll(context.Background(), flag.Args(), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.stdout {
		for _, out := range outputs {
			fmt.Print(out)
		}
		return
	}
	for i, out := range outputs {
		path := outputPath(flag.Arg(i), opts.outDir)
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", path, err)
			os.Exit(1)
		}
		if opts.verbose {
			log.Printf("wrote %s", path)
		}
	}
}

// transpileAll transpiles every input concurrently. Results are returned in
// input order; the first failure cancels the remaining work.
func transpileAll(ctx context.Context, paths []string, opts options) ([]string, error) {
	outputs := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := transpileFile(path, opts)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func transpileFile(path string, opts options) (string, error) {
	start := time.Now()
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file %q: %w", path, err)
	}

	out, err := compiler.Compile(string(src))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	if opts.verify {
		if _, err := cverify.Check(filepath.Base(outputPath(path, "")), out); err != nil {
			return "", fmt.Errorf("%s: generated C does not parse: %w", path, err)
		}
	}

	if opts.verbose {
		log.Printf("%s: %d bytes in %s", path, len(out), time.Since(start).Round(time.Microsecond))
	}
	return out, nil
}

// outputPath maps in.dawn to in.c, inside dir when dir is set.
func outputPath(inPath, dir string) string {
	out := inPath
	if ext := filepath.Ext(inPath); ext != "" {
		out = strings.TrimSuffix(inPath, ext)
	}
	out += ".c"
	if dir != "" {
		out = filepath.Join(dir, filepath.Base(out))
	}
	return out
}

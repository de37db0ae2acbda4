package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"dawn/pkg/compiler"
)

const (
	historyFile = ".dawn_history"
	promptMain  = "dawn> "
	promptCont  = "  ... "
)

const banner = `dawn console. Enter declarations to see their C translation.
Commands: :types  :reset  :quit`

func main() {
	fmt.Println(banner)

	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("no home directory, history disabled: %v", err)
	}
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if home == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := compiler.NewSession()
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return
		}
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}

		if strings.HasPrefix(src, ":") {
			switch strings.ToLower(src) {
			case ":quit", ":q":
				return
			case ":types":
				fmt.Print(session.Types())
			case ":reset":
				session.Reset()
				fmt.Println("types cleared")
			default:
				fmt.Println("unknown command. Commands: :types :reset :quit")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		out, err := session.Transpile(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Print(out)
	}
}

// readInput reads lines until they form a complete input, asking for more
// while the source so far ends in the middle of a construct. It reports
// false at end of input.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			log.Printf("read error: %v", err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !compiler.IsIncomplete(probe(src)) {
			return src, true
		}
	}
}

// probe lexes and parses src without generating code.
func probe(src string) error {
	tokens, err := compiler.Lex(src)
	if err != nil {
		return err
	}
	_, err = compiler.Parse(tokens)
	return err
}

// Command debug-java prints the fields extracted from Java files, one
// declaration per line, without writing any workbook.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mvp-joe/project-fieldsheet/internal/parsers"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: debug-java FILE.java...")
		os.Exit(2)
	}

	parser := parsers.NewJavaParser()
	for _, path := range os.Args[1:] {
		fields, err := parser.ParseFile(context.Background(), path)
		if err != nil {
			var perr *parsers.ParseError
			if errors.As(err, &perr) {
				log.Printf("%s: parse error at %d:%d: %v", path, perr.Line, perr.Column, perr.Err)
				continue
			}
			log.Fatal(err)
		}

		fmt.Printf("=== %s (%d fields) ===\n", path, len(fields))
		for _, f := range fields {
			fmt.Printf("  line %-4d %s %s", f.Line, f.Type, f.Name)
			if f.Default != nil {
				fmt.Printf(" = %s", *f.Default)
			}
			fmt.Println()
			if f.Comment != nil {
				fmt.Printf("            // %q\n", *f.Comment)
			}
		}
	}
}

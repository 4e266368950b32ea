package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/reusee/softplc/illang"
	"github.com/reusee/softplc/ladders"
)

// plcladder reads an IL program and prints its ladder document as JSON.

func main() {

	var input io.Reader = os.Stdin
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			os.Stderr.WriteString(err.Error())
			os.Stderr.WriteString("\n")
			os.Exit(-1)
		}
		defer f.Close()
		input = f
	}

	source, err := io.ReadAll(input)
	if err != nil {
		os.Stderr.WriteString(err.Error())
		os.Stderr.WriteString("\n")
		os.Exit(-1)
	}

	program := illang.Parse(string(source))
	for _, diag := range program.Warnings {
		os.Stderr.WriteString("warning: " + diag.String() + "\n")
	}
	for _, diag := range program.Errors {
		os.Stderr.WriteString("error: " + diag.String() + "\n")
	}

	docs := ladders.Build(program)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Stderr.WriteString("\n")
		os.Exit(-1)
	}
}

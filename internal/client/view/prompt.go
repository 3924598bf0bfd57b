package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptLine prints a label and reads one trimmed line of input.
func PromptLine(in *bufio.Scanner, out io.Writer, label string) string {
	fmt.Fprintf(out, "%s: ", label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// Confirm asks a blocking yes/no question and reports whether the user
// answered yes. Anything other than "y" or "yes" counts as no.
func Confirm(in *bufio.Scanner, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/n): ", question)
	if !in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "y", "yes":
		return true
	}
	return false
}

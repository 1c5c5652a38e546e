package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/gorgzorg/go-gorgzorg/gorgzorg"
)

// promptAccept asks the operator whether to accept an incoming item.
// Anything other than y/Y, including a bare newline, denies it.
func promptAccept(name string, size int64) bool {
	fmt.Printf("Do you want to zorg %s with %s? (y/N) ", name, gorgzorg.FormatSize(size))
	answer := readKey()
	fmt.Printf("%c\n", answer)
	return answer == 'y' || answer == 'Y'
}

// readKey reads a single keypress. On a real terminal the key is read in
// raw mode so the operator does not have to press enter; otherwise the
// first byte of the next input line is used.
func readKey() byte {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if old, err := term.MakeRaw(fd); err == nil {
			defer term.Restore(fd, old)
			var b [1]byte
			if _, err := os.Stdin.Read(b[:]); err == nil {
				return b[0]
			}
		}
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return 'n'
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 'n'
	}
	return line[0]
}

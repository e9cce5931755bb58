// Package prompt reads secrets such as vault passwords and key passphrases
// from the user.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// SecretFunc asks the user for a secret described by label.
type SecretFunc func(label string) (string, error)

// Secret prints label to stderr and reads a line from stdin, without echo
// when stdin is a terminal.
func Secret(label string) (string, error) {
	return readSecret(label, os.Stdin, os.Stderr)
}

func readSecret(label string, in *os.File, out io.Writer) (string, error) {
	fmt.Fprintf(out, "%s: ", label)

	if fd := int(in.Fd()); term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(out) // Add newline after password input
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return string(secret), nil
	}

	return readLine(bufio.NewReader(in), label)
}

func readLine(reader *bufio.Reader, label string) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

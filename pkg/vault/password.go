package vault

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/arthur-debert/seda/pkg/errors"
)

// ReadPassword reads a secret without echo from the controlling
// terminal. When stdin is not a terminal it reads one line without
// prompting, so non-interactive runs do not block.
func ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine()
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPasswordRead, "failed to read password")
	}
	return string(secret), nil
}

// PromptNewPassword asks for a password twice and rejects a mismatch
// or an empty secret. With piped stdin the confirmation prompt is
// skipped and a single line is read.
func PromptNewPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		password, err := readLine()
		if err != nil {
			return "", err
		}
		if password == "" {
			return "", errors.New(errors.ErrPasswordRead, "password is empty")
		}
		return password, nil
	}

	first, err := ReadPassword("Vault password: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", errors.New(errors.ErrPasswordRead, "password is empty")
	}
	second, err := ReadPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New(errors.ErrPasswordMismatch, "passwords do not match")
	}
	return first, nil
}

func readLine() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, errors.ErrPasswordRead, "failed to read password from stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

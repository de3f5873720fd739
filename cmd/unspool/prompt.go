package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// promptPassword prompts for a password without echoing when stdin is a
// terminal, falling back to a plain line read otherwise.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", err
		}
		fmt.Fprintln(os.Stderr)
		return string(password), nil
	}

	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(password), nil
}

// promptNewPassword asks for a password twice and requires a match.
func promptNewPassword() (string, error) {
	password, err := promptPassword("Seal password")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	repeat, err := promptPassword("Repeat password")
	if err != nil {
		return "", err
	}
	if password != repeat {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

// confirm asks a yes/no question on the terminal. Non-interactive runs
// answer no.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return false, nil
	}

	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

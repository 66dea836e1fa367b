// Command hashsecret prints the bcrypt hash of a secret for use in the
// ACCESS_USERS setting.
//
//	hashsecret 's3cret'
//	echo 's3cret' | hashsecret
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ultrashine/washlog/internal/auth"
)

func main() {
	secret, err := readSecret(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashsecret:", err)
		os.Exit(2)
	}

	hash, err := auth.HashSecret(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashsecret:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// readSecret takes the secret from the first argument, or the first line of stdin.
func readSecret(args []string) (string, error) {
	if len(args) > 0 {
		if args[0] == "" {
			return "", fmt.Errorf("secret must not be empty")
		}
		return args[0], nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("usage: hashsecret <secret> (or pipe it on stdin)")
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", fmt.Errorf("secret must not be empty")
	}
	return secret, nil
}

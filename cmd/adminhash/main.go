// Command adminhash prints the bcrypt hash to put in admin.password_hash
// (or the ADMIN_PASSWORD_HASH environment variable).
//
//	go run ./cmd/adminhash --password 's3cret'
//	echo 's3cret' | go run ./cmd/adminhash
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/urcet/yourfest-api/internal/service"
)

var errEmptyPassword = errors.New("password must not be empty")

func main() {
	var password string
	pflag.StringVarP(&password, "password", "p", "", "password to hash, read from stdin when omitted")
	pflag.Parse()

	if err := run(os.Stdin, os.Stdout, password); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, password string) error {
	if password == "" {
		scanner := bufio.NewScanner(in)
		if scanner.Scan() {
			password = strings.TrimRight(scanner.Text(), "\r")
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("scanner.Scan -> %w", err)
		}
	}

	if password == "" {
		return errEmptyPassword
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return fmt.Errorf("service.HashPassword -> %w", err)
	}

	_, err = fmt.Fprintln(out, hash)
	return err
}

// Package cli holds the operator commands shipped with both binaries.
package cli

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	temporaryPasswordLength   = 12
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

type PasswordResetter interface {
	ResetPassword(username string, password string) (uint, error)
}

type SessionRevoker interface {
	DeleteByAccount(accountID uint) error
}

// RunResetPasswordCommand sets a random temporary password for username and
// signs the account out everywhere.
func RunResetPasswordCommand(out io.Writer, accounts PasswordResetter, sessions SessionRevoker, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}

	temporaryPassword, err := generateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	accountID, err := accounts.ResetPassword(username, temporaryPassword)
	if err != nil {
		return fmt.Errorf("reset password for %s: %w", username, err)
	}
	if err := sessions.DeleteByAccount(accountID); err != nil {
		return fmt.Errorf("revoke sessions for %s: %w", username, err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password for %s: %s\n", username, temporaryPassword)
	fmt.Fprintln(out, "Existing sessions were signed out.")
	return nil
}

// generateTemporaryPassword draws uniformly from an alphabet without
// look-alike characters. Lengths below 8 are raised to 8.
func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	limit := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = temporaryPasswordAlphabet[position.Int64()]
	}
	return string(value), nil
}

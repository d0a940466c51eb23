// Package session persists the logged-in user between CLI invocations.
// Login is a client-local selection, not authentication: the file only
// remembers which user was picked.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/poupix/poupix/internal/model"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("not logged in")

// Save writes the selected user to the session file.
func Save(path string, user model.User) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Load reads the previously selected user from the session file.
func Load(path string) (*model.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return &user, nil
}

// Clear deletes the session file. Clearing an absent session is not an
// error.
func Clear(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

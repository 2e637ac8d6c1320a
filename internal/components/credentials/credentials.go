// Package credentials provides the username/password pair used to authenticate
// against the Splunk management API.
package credentials

import (
	"context"
	"errors"
	"os"
)

// ErrIncomplete is returned by a provider that could not produce both a username and a password.
var ErrIncomplete = errors.New("incomplete credentials")

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// Provider supplies credentials for a single run.
//
// note: fault injection point
type Provider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// Static is a provider with fixed credentials.
type Static Credentials

func (s Static) Credentials(ctx context.Context) (Credentials, error) {
	creds := Credentials(s)
	if !creds.Complete() {
		return creds, ErrIncomplete
	}
	return creds, nil
}

const (
	EnvUsername = "KVBACKUP_USERNAME"
	EnvPassword = "KVBACKUP_PASSWORD"
)

// Env reads credentials from KVBACKUP_USERNAME and KVBACKUP_PASSWORD.
type Env struct{}

func (Env) Credentials(ctx context.Context) (Credentials, error) {
	creds := Credentials{
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}
	if !creds.Complete() {
		return creds, ErrIncomplete
	}
	return creds, nil
}

// Chain returns the credentials of the first provider that produces complete credentials.
type Chain []Provider

func (c Chain) Credentials(ctx context.Context) (Credentials, error) {
	for _, p := range c {
		creds, err := p.Credentials(ctx)
		if errors.Is(err, ErrIncomplete) {
			continue
		}
		if err != nil {
			return Credentials{}, err
		}
		return creds, nil
	}
	return Credentials{}, ErrIncomplete
}

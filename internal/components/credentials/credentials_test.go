package credentials

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func pipeWith(t testing.TB, input string) *os.File {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.WriteString(input)
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	t.Cleanup(func() { r.Close() })
	return r
}

func TestStatic(t *testing.T) {
	creds, err := Static{Username: "admin", Password: "changeme"}.Credentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, Credentials{Username: "admin", Password: "changeme"}, creds)

	_, err = Static{Username: "admin"}.Credentials(context.Background())
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestEnv(t *testing.T) {
	t.Setenv(EnvUsername, "svc_backup")
	t.Setenv(EnvPassword, "")
	_, err := Env{}.Credentials(context.Background())
	require.ErrorIs(t, err, ErrIncomplete)

	t.Setenv(EnvPassword, "hunter2")
	creds, err := Env{}.Credentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, "svc_backup", creds.Username)
	require.Equal(t, "hunter2", creds.Password)
}

type failingProvider struct{}

func (failingProvider) Credentials(ctx context.Context) (Credentials, error) {
	return Credentials{}, errors.New("keyring locked")
}

func TestChain(t *testing.T) {
	chain := Chain{
		Static{Username: "only-user"},
		Static{Username: "admin", Password: "changeme"},
		failingProvider{},
	}
	creds, err := chain.Credentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, "admin", creds.Username)

	_, err = Chain{Static{}, failingProvider{}}.Credentials(context.Background())
	require.EqualError(t, err, "keyring locked")

	_, err = Chain{Static{}}.Credentials(context.Background())
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestPromptFromPipe(t *testing.T) {
	var out bytes.Buffer
	prompt := NewPrompt(pipeWith(t, "search\nkvstore_assets\nadmin\r\nchangeme\n"), &out)

	app, err := prompt.Ask("Splunk app name")
	require.NoError(t, err)
	require.Equal(t, "search", app)
	collection, err := prompt.Ask("KV store collection name")
	require.NoError(t, err)
	require.Equal(t, "kvstore_assets", collection)

	creds, err := prompt.Credentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, Credentials{Username: "admin", Password: "changeme"}, creds)

	require.Equal(t,
		"Splunk app name: KV store collection name: Splunk username: Splunk password: ",
		out.String(),
	)
}

func TestPromptKnownUsername(t *testing.T) {
	var out bytes.Buffer
	prompt := NewPrompt(pipeWith(t, "changeme"), &out)
	prompt.Username = "admin"

	creds, err := prompt.Credentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, Credentials{Username: "admin", Password: "changeme"}, creds)
	require.Equal(t, "Splunk password: ", out.String())
}

func TestPromptEmptyPassword(t *testing.T) {
	prompt := NewPrompt(pipeWith(t, "admin\n\n"), &bytes.Buffer{})
	_, err := prompt.Credentials(context.Background())
	require.ErrorIs(t, err, ErrIncomplete)
}

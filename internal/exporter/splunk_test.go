package exporter

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kvbackup/internal/components/credentials"
	"kvbackup/internal/components/telemetry"
	"kvbackup/internal/kvstore"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const splunkPassword = "kvbackup-integration"

// setupSplunk starts a Splunk container, it takes a few minutes so it only runs when
// KVBACKUP_INTEGRATION is set.
func setupSplunk(t testing.TB) (string, func()) {
	if os.Getenv("KVBACKUP_INTEGRATION") == "" {
		t.Skip("set KVBACKUP_INTEGRATION to run against a splunk container")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	splunk, err := testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "splunk/splunk:9.2",
				ExposedPorts: []string{"8089/tcp"},
				Env: map[string]string{
					"SPLUNK_START_ARGS":    "--accept-license",
					"SPLUNK_GENERAL_TERMS": "--accept-sgt-current-at-splunk-com",
					"SPLUNK_PASSWORD":      splunkPassword,
				},
				WaitingFor: wait.ForHTTP("/services/server/info").
					WithPort("8089/tcp").
					WithTLS(true, &tls.Config{InsecureSkipVerify: true}).
					WithBasicAuth("admin", splunkPassword).
					WithStartupTimeout(10 * time.Minute),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	host, err := splunk.Host(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	port, err := splunk.MappedPort(context.Background(), "8089/tcp")
	if err != nil {
		t.Fatal(err)
	}

	return fmt.Sprintf("https://%s:%s", host, port.Port()), func() {
		err := splunk.Terminate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}
}

func seedCollection(t testing.TB, baseUrl, namespace, collection string, records string) {
	client := resty.New().
		SetBaseURL(baseUrl).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}).
		SetBasicAuth("admin", splunkPassword)

	res, err := client.R().
		SetFormData(map[string]string{"name": collection}).
		Post(fmt.Sprintf("/servicesNS/nobody/%s/storage/collections/config", namespace))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode(), res.String())

	res, err = client.R().
		SetHeader("content-type", "application/json").
		SetBody(records).
		Post(kvstore.CollectionPath(namespace, collection) + "/batch_save")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode(), res.String())
}

func TestSplunkExport(t *testing.T) {
	baseUrl, cleanup := setupSplunk(t)
	defer cleanup()

	seedCollection(t, baseUrl, "search", "assets", `[
		{"host":"web-01","port":443},
		{"host":"web-02","port":8443}
	]`)

	client, err := kvstore.NewClient(kvstore.Options{
		BaseUrl:            baseUrl,
		InsecureSkipVerify: true,
		Timeout:            30 * time.Second,
		Telemetry:          &telemetry.Recorder{},
	})
	require.NoError(t, err)
	exp, _, dir := newExporter(t, client)
	creds := credentials.Static{Username: "admin", Password: splunkPassword}

	res, err := exp.Run(context.Background(), Target{Namespace: "search", Collection: "kvstore_assets"}, creds)
	require.NoError(t, err)
	require.Equal(t, OutcomeWritten, res.Outcome)
	require.Equal(t, []string{"host", "port"}, res.Columns)
	require.Equal(t,
		"host,port\r\n\"web-01\",443\r\n\"web-02\",8443\r\n",
		readFile(t, filepath.Join(dir, "search", "kvstore_assets.csv")),
	)

	res, err = exp.Run(context.Background(), Target{Namespace: "search", Collection: "missing"}, creds)
	require.NoError(t, err)
	require.Equal(t, OutcomeBadStatus, res.Outcome)
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = exp.Run(context.Background(), Target{Namespace: "search", Collection: "assets"}, credentials.Static{Username: "admin", Password: "wrong"})
	require.NoError(t, err)
	require.Equal(t, OutcomeBadStatus, res.Outcome)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

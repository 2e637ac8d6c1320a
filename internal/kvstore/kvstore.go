// Package kvstore reads collections from the Splunk KV store REST API.
package kvstore

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	"kvbackup/internal/components/credentials"
	"kvbackup/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseUrl is the management address of a local Splunk instance.
	DefaultBaseUrl = "https://127.0.0.1:8389"

	// CollectionPrefix is the prefix collections are commonly referred to with.
	CollectionPrefix = "kvstore_"
)

// NormalizeCollection strips one leading "kvstore_" from a collection name.
func NormalizeCollection(name string) string {
	return strings.TrimPrefix(name, CollectionPrefix)
}

// BackupFileName is the name of the csv file a collection is exported to, it always
// carries the "kvstore_" prefix.
func BackupFileName(collection string) string {
	return CollectionPrefix + NormalizeCollection(collection) + ".csv"
}

// CollectionPath is the REST path to the data of a collection owned by `nobody` in the given app.
func CollectionPath(namespace, collection string) string {
	return fmt.Sprintf(
		"/servicesNS/nobody/%s/storage/collections/data/%s",
		url.PathEscape(namespace),
		url.PathEscape(collection),
	)
}

type Options struct {
	BaseUrl string
	// InsecureSkipVerify disables TLS certificate verification for this client only.
	InsecureSkipVerify bool
	// Timeout of 0 means the request never times out.
	Timeout   time.Duration
	Telemetry telemetry.API
}

// Response is the raw result of a collection read, any status code is returned as is.
type Response struct {
	StatusCode int
	Body       []byte
}

type Client struct {
	baseUrl *url.URL
	http    *resty.Client
	tel     telemetry.API
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseUrl.Scheme != "http" && baseUrl.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", opts.BaseUrl)
	}
	if baseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", opts.BaseUrl)
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	tel := telemetry.NewScopedAPI("kvstore", opts.Telemetry)

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseUrl, "/"))
	client.SetHeader("accept", "application/json")
	if opts.InsecureSkipVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	telemetry.InstrumentResty(client, tel)

	return &Client{
		baseUrl: baseUrl,
		http:    client,
		tel:     tel,
	}, nil
}

// CollectionURL is the full address a collection is read from, without the query.
func (c *Client) CollectionURL(namespace, collection string) string {
	return strings.TrimRight(c.baseUrl.String(), "/") + CollectionPath(namespace, NormalizeCollection(collection))
}

// FetchCollection reads every record of a collection as json. An error is only returned
// when no response was received.
func (c *Client) FetchCollection(ctx context.Context, namespace, collection string, creds credentials.Credentials) (Response, error) {
	path := CollectionPath(namespace, NormalizeCollection(collection))
	c.tel.ReportDebug("fetching collection", c.CollectionURL(namespace, collection))

	res, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(creds.Username, creds.Password).
		SetQueryParam("output_mode", "json").
		Get(path)
	if err != nil {
		return Response{}, fmt.Errorf("fetch collection %s/%s: %w", namespace, collection, err)
	}

	return Response{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}

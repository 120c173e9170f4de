/*
 * Copyright 2026 The License Curator Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package couchdb provides an HTTP client for CouchDB-compatible document
// stores. Each call sends exactly one request and never retries.
package couchdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/xid"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/internal/logging"
	"github.com/sw360/license-curator/pkg/errors"
	"github.com/sw360/license-curator/pkg/metrics"
)

const (
	// RequestIDHeader carries the id generated for each request.
	RequestIDHeader = "X-Request-ID"

	contentTypeJSON = "application/json"
	maxErrorBody    = 64 << 10
)

// Config is the configuration of the transport.
type Config struct {
	// URL is the base URL of the store, e.g. http://localhost:5984.
	URL string

	// Username and Password are sent with HTTP basic authentication.
	Username string
	Password string

	// Database is the name of the database holding the documents.
	Database string

	// RequestTimeout bounds each request. Zero means no bound besides the
	// deadline of the context.
	RequestTimeout time.Duration
}

// Options are the collaborators of the transport. Nil fields get defaults.
type Options struct {
	HTTPClient *http.Client
	Logger     logging.Logger
	Metrics    *metrics.Metrics
}

// Client sends requests to one database of the store. It is safe for
// concurrent use.
type Client struct {
	conf     Config
	baseURL  string
	parseErr error

	httpClient *http.Client
	logger     logging.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new instance of Client. It does not contact the
// store; an invalid URL is reported by the first request.
func NewClient(conf Config, opts Options) *Client {
	c := &Client{
		conf:       conf,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}

	var user *url.Userinfo
	c.baseURL, user, c.parseErr = parseBaseURL(conf.URL)
	if c.conf.Username == "" && user != nil {
		c.conf.Username = user.Username()
		c.conf.Password, _ = user.Password()
	}
	if c.httpClient == nil {
		c.httpClient = cleanhttp.DefaultPooledClient()
	}
	if c.logger == nil {
		c.logger = logging.DefaultLogger()
	}

	return c
}

// parseBaseURL returns the URL without credentials, trailing slash, query
// or fragment, and the credentials it carried.
func parseBaseURL(raw string) (string, *url.Userinfo, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, fmt.Errorf("parse url %q: scheme must be http or https", u.Redacted())
	}
	if u.Host == "" {
		return "", nil, fmt.Errorf("parse url %q: missing host", u.Redacted())
	}

	user := u.User
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/"), user, nil
}

// Database returns the name of the database.
func (c *Client) Database() string {
	return c.conf.Database
}

// Post stores body as a new document and lets the store assign the id.
func (c *Client) Post(ctx context.Context, body any) (*types.WriteResult, error) {
	res := &types.WriteResult{}
	if err := c.do(ctx, &request{
		op:     "post",
		method: http.MethodPost,
		path:   c.dbPath(),
		body:   body,
		write:  true,
	}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Get decodes the document with the given id into out.
func (c *Client) Get(ctx context.Context, id string, out any) error {
	return c.do(ctx, &request{
		op:     "get",
		method: http.MethodGet,
		path:   c.docPath(id),
	}, out)
}

// Put writes body as the next revision of the document. The body carries
// the current revision in _rev.
func (c *Client) Put(ctx context.Context, id string, body any) (*types.WriteResult, error) {
	res := &types.WriteResult{}
	if err := c.do(ctx, &request{
		op:     "put",
		method: http.MethodPut,
		path:   c.docPath(id),
		body:   body,
		write:  true,
	}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Delete deletes the given revision of the document.
func (c *Client) Delete(ctx context.Context, id, rev string) (*types.WriteResult, error) {
	res := &types.WriteResult{}
	if err := c.do(ctx, &request{
		op:     "delete",
		method: http.MethodDelete,
		path:   c.docPath(id),
		query:  url.Values{"rev": []string{rev}},
		write:  true,
	}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Find runs a selector query and decodes the response into out.
func (c *Client) Find(ctx context.Context, query *types.Query, out *types.FindResponse) error {
	if err := c.do(ctx, &request{
		op:     "find",
		method: http.MethodPost,
		path:   c.dbPath() + "/_find",
		body:   query,
	}, out); err != nil {
		return err
	}

	if c.metrics != nil {
		c.metrics.AddDocumentsReturned(c.conf.Database, len(out.Docs))
	}
	return nil
}

// ServerInfo returns the welcome message of the store.
func (c *Client) ServerInfo(ctx context.Context) (*types.ServerInfo, error) {
	info := &types.ServerInfo{}
	if err := c.do(ctx, &request{
		op:     "server_info",
		method: http.MethodGet,
		path:   "/",
	}, info); err != nil {
		return nil, err
	}
	return info, nil
}

// AllDBs returns the names of the databases of the store.
func (c *Client) AllDBs(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, &request{
		op:     "all_dbs",
		method: http.MethodGet,
		path:   "/_all_dbs",
	}, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) dbPath() string {
	return "/" + url.PathEscape(c.conf.Database)
}

func (c *Client) docPath(id string) string {
	return c.dbPath() + "/" + url.PathEscape(id)
}

// request describes one call to the store.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any

	// write marks requests that may change the store.
	write bool
}

func (c *Client) do(ctx context.Context, req *request, out any) (err error) {
	requestID := xid.New().String()
	start := time.Now()
	status := 0

	defer func() {
		c.observe(req, requestID, status, time.Since(start), err)
	}()

	if c.parseErr != nil {
		return fmt.Errorf("%s %s: %w: %w", req.method, req.path, ErrTransport, c.parseErr)
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w: %w", req.method, req.path, ErrValidation, err)
		}
		body = bytes.NewReader(data)
	}

	if c.conf.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.conf.RequestTimeout)
		defer cancel()
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", req.method, req.path, ErrTransport, err)
	}
	httpReq.SetBasicAuth(c.conf.Username, c.conf.Password)
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transportError(req.method, req.path, req.write, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("close response body of %s: %v", requestID, err)
		}
	}()
	status = resp.StatusCode

	if status < 200 || status > 299 {
		return statusError(req.method, req.path, status, readErrorBody(resp.Body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(req.method, req.path, req.write, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", req.method, req.path, ErrUnexpectedResponse, err)
	}

	return nil
}

func readErrorBody(r io.Reader) *errorBody {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return nil
	}

	body := &errorBody{}
	if err := json.Unmarshal(data, body); err != nil {
		return &errorBody{Reason: strings.TrimSpace(string(data))}
	}
	return body
}

// observe logs the request and records its metrics.
func (c *Client) observe(req *request, requestID string, status int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errors.StatusOf(err).String()
	}

	fields := []any{
		"request_id", requestID,
		"method", req.method,
		"path", req.path,
		"status", status,
		"duration", elapsed,
	}

	conflict := errors.IsStatus(err, errors.ErrCodeFailedPrecondition)
	switch {
	case err == nil:
		c.logger.Debugw("store request", fields...)
	case conflict:
		c.logger.Warnw("store request conflict", append(fields, "error", err)...)
	case errors.IsServerError(err):
		c.logger.Warnw("store request failed", append(fields, "error", err, "timeout", isTimeout(err))...)
	case errors.IsClientError(err):
		c.logger.Debugw("store request rejected", append(fields, "error", err, "reason", errors.Metadata(err)["reason"])...)
	default:
		c.logger.Debugw("store request error", append(fields, "error", err)...)
	}

	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(c.conf.Database, req.op, req.method, outcome, elapsed)
	if conflict {
		c.metrics.AddRevisionConflict(c.conf.Database, req.op)
	}
}

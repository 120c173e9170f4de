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

// Package curation provides the license curation client. It reads and
// writes license documents held in a CouchDB-compatible document store and
// follows the optimistic concurrency protocol of the store: writes present
// the current revision of the document and fail with ErrRevisionConflict
// when it is stale. The client never retries.
package curation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/internal/logging"
	"github.com/sw360/license-curator/pkg/couchdb"
)

// countFields is the projection used when only the number of documents is
// needed.
var countFields = []string{types.FieldID, types.FieldType}

// searchFields are the fields searched when Search gets no fields.
var searchFields = []string{types.FieldFullName, types.FieldShortName, types.FieldText}

// Client is a client of the license documents of one database. It is safe
// for concurrent use.
type Client struct {
	conf   Config
	store  *couchdb.Client
	logger logging.Logger
}

// New creates a new instance of Client. It does not contact the store. A
// nil conf means NewConfig().
func New(conf *Config, opts ...Option) *Client {
	if conf == nil {
		conf = NewConfig()
	}

	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	logger := logging.New("curation")
	if options.Logger != nil {
		logger = options.Logger.Sugar()
	}

	timeout, err := conf.ParseRequestTimeout()
	if err != nil {
		logger.Warnf("%v, using %s", err, DefaultRequestTimeout)
		timeout = DefaultRequestTimeout
	}

	return &Client{
		conf:   *conf,
		logger: logger,
		store: couchdb.NewClient(couchdb.Config{
			URL:            conf.URL,
			Username:       conf.Username,
			Password:       conf.Password,
			Database:       conf.Database,
			RequestTimeout: timeout,
		}, couchdb.Options{
			HTTPClient: options.HTTPClient,
			Logger:     logger,
			Metrics:    options.Metrics,
		}),
	}
}

// Database returns the name of the database of the client.
func (c *Client) Database() string {
	return c.conf.Database
}

// Create stores a new license document and returns the id and revision
// assigned by the store. Short names are not checked for uniqueness.
func (c *Client) Create(ctx context.Context, fields types.LicenseFields) (string, string, error) {
	if err := fields.Validate(); err != nil {
		return "", "", fmt.Errorf("create license: %w: %w", ErrValidation, err)
	}

	res, err := c.store.Post(ctx, &types.LicenseDocument{
		Type:          types.DocumentTypeLicense,
		LicenseFields: fields,
	})
	if err != nil {
		return "", "", fmt.Errorf("create license %s: %w", fields.ShortName, err)
	}
	if res.ID == "" || res.Rev == "" {
		return "", "", fmt.Errorf("create license %s: missing id or rev: %w", fields.ShortName, ErrUnexpectedResponse)
	}

	c.logger.Debugf("created license %s as %s at %s", fields.ShortName, res.ID, res.Rev)
	return res.ID, res.Rev, nil
}

// Get returns the document with the given id. A document of another type
// is returned as it is.
func (c *Client) Get(ctx context.Context, id string) (*types.LicenseDocument, error) {
	if err := requireNotEmpty("id", id); err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}

	doc := &types.LicenseDocument{}
	if err := c.store.Get(ctx, id, doc); err != nil {
		return nil, fmt.Errorf("get license %s: %w", id, err)
	}

	return doc, nil
}

// Update replaces the document with the given fields and returns the new
// revision. revision must be the current revision of the document. fields
// is the full representation: extension fields missing from it are
// removed from the document.
func (c *Client) Update(
	ctx context.Context,
	id string,
	revision string,
	fields types.LicenseFields,
) (string, error) {
	if err := requireNotEmpty("id", id); err != nil {
		return "", fmt.Errorf("update license: %w", err)
	}
	if err := requireNotEmpty("revision", revision); err != nil {
		return "", fmt.Errorf("update license %s: %w", id, err)
	}
	if err := fields.Validate(); err != nil {
		return "", fmt.Errorf("update license %s: %w: %w", id, ErrValidation, err)
	}

	res, err := c.store.Put(ctx, id, &types.LicenseDocument{
		ID:            id,
		Revision:      revision,
		Type:          types.DocumentTypeLicense,
		LicenseFields: fields,
	})
	if err != nil {
		return "", fmt.Errorf("update license %s at %s: %w", id, revision, err)
	}
	if res.Rev == "" {
		return "", fmt.Errorf("update license %s: missing rev: %w", id, ErrUnexpectedResponse)
	}

	return res.Rev, nil
}

// Delete deletes the document. revision must be the current revision of
// the document.
func (c *Client) Delete(ctx context.Context, id string, revision string) error {
	if err := requireNotEmpty("id", id); err != nil {
		return fmt.Errorf("delete license: %w", err)
	}
	if err := requireNotEmpty("revision", revision); err != nil {
		return fmt.Errorf("delete license %s: %w", id, err)
	}

	if _, err := c.store.Delete(ctx, id, revision); err != nil {
		return fmt.Errorf("delete license %s at %s: %w", id, revision, err)
	}

	return nil
}

// List returns license documents. limit <= 0 sends no limit, in which case
// the default limit of the store applies.
func (c *Client) List(ctx context.Context, limit int) ([]*types.LicenseDocument, error) {
	docs, err := c.find(ctx, &types.Query{
		Selector: types.LicenseSelector(),
		Limit:    max(limit, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}

	return docs, nil
}

// FindByShortName returns the license documents with the given short name.
func (c *Client) FindByShortName(ctx context.Context, shortName string) ([]*types.LicenseDocument, error) {
	if err := requireNotEmpty("short name", shortName); err != nil {
		return nil, fmt.Errorf("find license by short name: %w", err)
	}

	docs, err := c.FindByPredicate(ctx, types.Selector{types.FieldShortName: shortName})
	if err != nil {
		return nil, fmt.Errorf("find license by short name %s: %w", shortName, err)
	}

	return docs, nil
}

// FindByPredicate returns the license documents matching every condition
// of the predicate. A type condition in the predicate is replaced.
func (c *Client) FindByPredicate(ctx context.Context, predicate types.Selector) ([]*types.LicenseDocument, error) {
	if err := validatePredicate(predicate); err != nil {
		return nil, fmt.Errorf("find licenses: %w", err)
	}

	docs, err := c.find(ctx, &types.Query{
		Selector: predicate.And(types.LicenseSelector()),
	})
	if err != nil {
		return nil, fmt.Errorf("find licenses: %w", err)
	}

	return docs, nil
}

// FindOSIApproved returns the OSI-approved licenses.
func (c *Client) FindOSIApproved(ctx context.Context) ([]*types.LicenseDocument, error) {
	return c.FindByPredicate(ctx, types.Selector{types.FieldOSIApproved: true})
}

// FindChecked returns the licenses reviewed by a curator.
func (c *Client) FindChecked(ctx context.Context) ([]*types.LicenseDocument, error) {
	return c.FindByPredicate(ctx, types.Selector{types.FieldChecked: true})
}

// FindUnchecked returns the licenses waiting for review.
func (c *Client) FindUnchecked(ctx context.Context) ([]*types.LicenseDocument, error) {
	return c.FindByPredicate(ctx, types.Selector{types.FieldChecked: false})
}

// Count returns the number of license documents. There is no count
// primitive in the store, so it is the length of a projected list query
// and is subject to the default limit of the store.
func (c *Client) Count(ctx context.Context) (int, error) {
	count, err := c.count(ctx, types.LicenseSelector())
	if err != nil {
		return 0, fmt.Errorf("count licenses: %w", err)
	}

	return count, nil
}

// Search returns the license documents whose given fields contain text,
// ignoring case. Without fields, full name, short name and text are
// searched. The search runs on the result of List(ctx, 0).
func (c *Client) Search(ctx context.Context, text string, fields ...string) ([]*types.LicenseDocument, error) {
	if len(fields) == 0 {
		fields = searchFields
	}

	docs, err := c.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("search licenses: %w", err)
	}

	needle := strings.ToLower(text)
	var found []*types.LicenseDocument
	for _, doc := range docs {
		for _, field := range fields {
			value, ok := doc.StringField(field)
			if ok && strings.Contains(strings.ToLower(value), needle) {
				found = append(found, doc)
				break
			}
		}
	}

	return found, nil
}

// Stats returns the number of licenses per category.
func (c *Client) Stats(ctx context.Context) (*types.LicenseStats, error) {
	stats := &types.LicenseStats{}
	counts := []struct {
		selector types.Selector
		target   *int
	}{
		{types.LicenseSelector(), &stats.Total},
		{types.Selector{types.FieldOSIApproved: true}.And(types.LicenseSelector()), &stats.OSIApproved},
		{types.Selector{types.FieldChecked: true}.And(types.LicenseSelector()), &stats.Checked},
		{types.Selector{types.FieldChecked: false}.And(types.LicenseSelector()), &stats.Unchecked},
	}

	for _, cnt := range counts {
		n, err := c.count(ctx, cnt.selector)
		if err != nil {
			return nil, fmt.Errorf("license stats: %w", err)
		}
		*cnt.target = n
	}

	return stats, nil
}

// Ping checks the connection and returns the welcome message of the store.
func (c *Client) Ping(ctx context.Context) (*types.ServerInfo, error) {
	info, err := c.store.ServerInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return info, nil
}

// ListDatabases returns the names of the databases of the store.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	names, err := c.store.AllDBs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	return names, nil
}

// find runs the query and keeps the license documents of the result.
func (c *Client) find(ctx context.Context, query *types.Query) ([]*types.LicenseDocument, error) {
	res := &types.FindResponse{}
	if err := c.store.Find(ctx, query, res); err != nil {
		return nil, err
	}
	if res.Warning != "" {
		c.logger.Debugf("query %v: %s", query.Selector, res.Warning)
	}

	docs := make([]*types.LicenseDocument, 0, len(res.Docs))
	for _, doc := range res.Docs {
		if doc == nil || !doc.IsLicense() {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (c *Client) count(ctx context.Context, selector types.Selector) (int, error) {
	docs, err := c.find(ctx, &types.Query{
		Selector: selector,
		Fields:   countFields,
	})
	if err != nil {
		return 0, err
	}

	return len(docs), nil
}

func requireNotEmpty(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty: %w", name, ErrValidation)
	}
	return nil
}

// validatePredicate accepts scalar values only.
func validatePredicate(predicate types.Selector) error {
	for key, value := range predicate {
		if key == "" {
			return fmt.Errorf("empty predicate key: %w", ErrValidation)
		}

		switch value.(type) {
		case nil, string, bool, json.Number,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
		default:
			return fmt.Errorf("predicate %s: %T is not a scalar: %w", key, value, ErrValidation)
		}
	}
	return nil
}

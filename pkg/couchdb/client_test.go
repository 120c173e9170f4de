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

package couchdb_test

import (
	"context"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/internal/logging"
	"github.com/sw360/license-curator/pkg/metrics"
	"github.com/sw360/license-curator/pkg/couchdb"
	"github.com/sw360/license-curator/pkg/errors"
	"github.com/sw360/license-curator/test/couchtest"
)

const (
	testDB       = "sw360db"
	testUser     = "admin"
	testPassword = "password"
)

func newClient(url string, timeout time.Duration) *couchdb.Client {
	return couchdb.NewClient(couchdb.Config{
		URL:            url,
		Username:       testUser,
		Password:       testPassword,
		Database:       testDB,
		RequestTimeout: timeout,
	}, couchdb.Options{Logger: logging.Nop()})
}

// newStatusServer replies to every request with the given status and body.
func newStatusServer(t *testing.T, status int, body string) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
		code     errors.StatusCode
	}{
		{http.StatusBadRequest, couchdb.ErrValidation, errors.ErrCodeInvalidArgument},
		{http.StatusUnsupportedMediaType, couchdb.ErrValidation, errors.ErrCodeInvalidArgument},
		{http.StatusUnauthorized, couchdb.ErrUnauthorized, errors.ErrCodeUnauthenticated},
		{http.StatusForbidden, couchdb.ErrUnauthorized, errors.ErrCodeUnauthenticated},
		{http.StatusNotFound, couchdb.ErrDocumentNotFound, errors.ErrCodeNotFound},
		{http.StatusConflict, couchdb.ErrRevisionConflict, errors.ErrCodeFailedPrecondition},
		{http.StatusPreconditionFailed, couchdb.ErrRevisionConflict, errors.ErrCodeFailedPrecondition},
		{http.StatusInternalServerError, couchdb.ErrTransport, errors.ErrCodeUnavailable},
		{http.StatusServiceUnavailable, couchdb.ErrTransport, errors.ErrCodeUnavailable},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			ts := newStatusServer(t, tc.status, `{"error":"some_error","reason":"some reason"}`)
			client := newClient(ts.URL, time.Second)

			var doc types.LicenseDocument
			err := client.Get(context.Background(), "abc", &doc)
			assert.ErrorIs(t, err, tc.sentinel)
			assert.Equal(t, tc.code, errors.StatusOf(err))
			assert.Equal(t, map[string]string{"error": "some_error", "reason": "some reason"}, errors.Metadata(err))
			assert.NotErrorIs(t, err, couchdb.ErrOutcomeUnknown)
		})
	}

	t.Run("non JSON error body test", func(t *testing.T) {
		ts := newStatusServer(t, http.StatusBadGateway, "bad gateway")
		client := newClient(ts.URL, time.Second)

		_, err := client.Put(context.Background(), "abc", map[string]any{"_rev": "1-a"})
		assert.ErrorIs(t, err, couchdb.ErrTransport)
		assert.NotErrorIs(t, err, couchdb.ErrOutcomeUnknown)
		assert.Equal(t, "bad gateway", errors.Metadata(err)["reason"])
	})
}

func TestUnexpectedResponse(t *testing.T) {
	ts := newStatusServer(t, http.StatusOK, "<html>proxy login</html>")
	client := newClient(ts.URL, time.Second)

	_, err := client.ServerInfo(context.Background())
	assert.ErrorIs(t, err, couchdb.ErrUnexpectedResponse)
	assert.Equal(t, errors.ErrCodeInternal, errors.StatusOf(err))
}

func TestTransportFailures(t *testing.T) {
	t.Run("invalid url test", func(t *testing.T) {
		for _, url := range []string{"localhost:5984", "://bad", "ftp://host", "http://"} {
			client := newClient(url, time.Second)
			_, err := client.AllDBs(context.Background())
			assert.ErrorIs(t, err, couchdb.ErrTransport, url)
		}
	})

	t.Run("unreachable host test", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		client := newClient(url, time.Second)

		var doc types.LicenseDocument
		err := client.Get(context.Background(), "abc", &doc)
		assert.ErrorIs(t, err, couchdb.ErrTransport)
		assert.NotErrorIs(t, err, couchdb.ErrOutcomeUnknown)

		_, err = client.Post(context.Background(), map[string]any{"type": "license"})
		assert.ErrorIs(t, err, couchdb.ErrTransport)
		assert.ErrorIs(t, err, couchdb.ErrOutcomeUnknown)

		err = client.Find(context.Background(), &types.Query{Selector: types.LicenseSelector()}, &types.FindResponse{})
		assert.ErrorIs(t, err, couchdb.ErrTransport)
		assert.NotErrorIs(t, err, couchdb.ErrOutcomeUnknown)
	})

	t.Run("request timeout test", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(release)

		client := newClient(ts.URL, 50*time.Millisecond)
		_, err := client.Delete(context.Background(), "abc", "1-a")
		assert.ErrorIs(t, err, couchdb.ErrTransport)
		assert.ErrorIs(t, err, couchdb.ErrOutcomeUnknown)
		assert.True(t, goerrors.Is(err, context.DeadlineExceeded))
	})

	t.Run("caller deadline test", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(release)

		client := newClient(ts.URL, time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		var doc types.LicenseDocument
		err := client.Get(ctx, "abc", &doc)
		assert.ErrorIs(t, err, couchdb.ErrTransport)
	})
}

func TestRequestShape(t *testing.T) {
	var count int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)

		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, testUser, username)
		assert.Equal(t, testPassword, password)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get(couchdb.RequestIDHeader))

		switch r.Method {
		case http.MethodDelete:
			assert.Equal(t, "/couch/sw360db/a%2Fb", r.URL.EscapedPath())
			assert.Equal(t, "1-x", r.URL.Query().Get("rev"))
			assert.Empty(t, r.Header.Get("Content-Type"))
		case http.MethodPost:
			assert.Equal(t, "/couch/sw360db/_find", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		}

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"docs":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"id":"a/b","rev":"2-y"}`))
	}))
	defer ts.Close()

	client := newClient(ts.URL+"/couch/", time.Second)

	res, err := client.Delete(context.Background(), "a/b", "1-x")
	require.NoError(t, err)
	assert.Equal(t, "2-y", res.Rev)

	var found types.FindResponse
	require.NoError(t, client.Find(context.Background(), &types.Query{Selector: types.LicenseSelector()}, &found))
	assert.Empty(t, found.Docs)
	assert.Equal(t, int32(2), atomic.LoadInt32(&count))
}

func TestCredentialsFromURL(t *testing.T) {
	ts, _ := couchtest.NewServer(t, couchtest.Config{Username: testUser, Password: testPassword})

	client := couchdb.NewClient(couchdb.Config{
		URL:      strings.Replace(ts.URL, "http://", "http://"+testUser+":"+testPassword+"@", 1),
		Database: testDB,
	}, couchdb.Options{Logger: logging.Nop()})

	info, err := client.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Welcome", info.CouchDB)
}

func TestAgainstTestStore(t *testing.T) {
	ts, _ := couchtest.NewServer(t, couchtest.Config{
		Username:  testUser,
		Password:  testPassword,
		Databases: []string{testDB},
	})

	m, err := metrics.NewMetrics()
	require.NoError(t, err)

	client := couchdb.NewClient(couchdb.Config{
		URL:            ts.URL,
		Username:       testUser,
		Password:       testPassword,
		Database:       testDB,
		RequestTimeout: time.Second,
	}, couchdb.Options{Logger: logging.Nop(), Metrics: m})
	ctx := context.Background()

	created, err := client.Post(ctx, types.LicenseDocument{
		Type:          types.DocumentTypeLicense,
		LicenseFields: types.LicenseFields{FullName: "MIT License", ShortName: "MIT"},
	})
	require.NoError(t, err)
	assert.True(t, created.OK)
	assert.True(t, strings.HasPrefix(created.Rev, "1-"))

	var doc types.LicenseDocument
	require.NoError(t, client.Get(ctx, created.ID, &doc))
	assert.Equal(t, "MIT", doc.ShortName)

	doc.Checked = true
	updated, err := client.Put(ctx, created.ID, doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.Rev, "2-"))

	_, err = client.Put(ctx, created.ID, doc)
	assert.ErrorIs(t, err, couchdb.ErrRevisionConflict)
	assert.Equal(t, "conflict", errors.Metadata(err)["error"])

	var found types.FindResponse
	require.NoError(t, client.Find(ctx, &types.Query{Selector: types.LicenseSelector()}, &found))
	assert.Len(t, found.Docs, 1)

	names, err := client.AllDBs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testDB}, names)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var conflicts float64
	for _, family := range families {
		if family.GetName() == "license_curator_store_revision_conflicts_total" {
			conflicts = family.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), conflicts)
	count, err := testutil.GatherAndCount(m.Registry(), "license_curator_store_documents_returned_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

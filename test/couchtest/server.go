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

package couchtest

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/sw360/license-curator/internal/logging"
)

const (
	// DefaultLimit is the number of documents a query returns when the
	// request carries no limit.
	DefaultLimit = 25

	// Version is the server version reported by GET /.
	Version = "3.3.3"
)

// Config is the configuration of the test store.
type Config struct {
	// Username and Password are required on every request when Username
	// is not empty.
	Username string
	Password string

	// Databases are created on start.
	Databases []string

	// DefaultLimit overrides DefaultLimit when positive.
	DefaultLimit int

	// Logger logs every request at debug level.
	Logger logging.Logger
}

// Server is an http.Handler serving the document store API.
type Server struct {
	conf  Config
	uuid  string
	store *store
	mux   *http.ServeMux
}

// New creates a new test store.
func New(conf Config) (*Server, error) {
	st, err := newStore()
	if err != nil {
		return nil, err
	}

	if conf.DefaultLimit <= 0 {
		conf.DefaultLimit = DefaultLimit
	}
	if conf.Logger == nil {
		conf.Logger = logging.Nop()
	}

	s := &Server{
		conf:  conf,
		uuid:  uuid.NewString(),
		store: st,
		mux:   http.NewServeMux(),
	}
	for _, name := range conf.Databases {
		if err := st.createDatabase(name); err != nil {
			return nil, fmt.Errorf("create database %s: %w", name, err)
		}
	}

	s.mux.HandleFunc("GET /{$}", s.handleWelcome)
	s.mux.HandleFunc("GET /_all_dbs", s.handleAllDBs)
	s.mux.HandleFunc("PUT /{db}", s.handleCreateDatabase)
	s.mux.HandleFunc("POST /{db}", s.handlePostDocument)
	s.mux.HandleFunc("POST /{db}/_find", s.handleFind)
	s.mux.HandleFunc("GET /{db}/{id}", s.handleGetDocument)
	s.mux.HandleFunc("PUT /{db}/{id}", s.handlePutDocument)
	s.mux.HandleFunc("DELETE /{db}/{id}", s.handleDeleteDocument)

	return s, nil
}

// NewServer starts an httptest server backed by a new test store. The
// server is closed when the test finishes.
func NewServer(t testing.TB, conf Config) (*httptest.Server, *Server) {
	t.Helper()

	s, err := New(conf)
	if err != nil {
		t.Fatalf("new test store: %v", err)
	}

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts, s
}

// Seed stores the given JSON object in the database as a new document and
// returns its id and revision. It bypasses authentication and lets tests
// store documents of any type.
func (s *Server) Seed(db string, body []byte) (string, string, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return "", "", err
	}

	id, _ := obj["_id"].(string)
	if id == "" {
		id = newDocID()
	}
	delete(obj, "_id")
	delete(obj, "_rev")

	doc, err := s.store.put(db, id, "", obj)
	if err != nil {
		return "", "", err
	}
	return doc.ID, doc.Rev, nil
}

// CreateDatabase creates a database.
func (s *Server) CreateDatabase(name string) error {
	return s.store.createDatabase(name)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.conf.Logger.Debugf("%s %s", r.Method, r.URL.RequestURI())

	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="server"`)
		writeError(w, &couchError{http.StatusUnauthorized, "unauthorized", "Name or password is incorrect."})
		return
	}

	s.mux.ServeHTTP(w, r)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.conf.Username == "" {
		return true
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.conf.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.conf.Password)) == 1
	return userOK && passOK
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"couchdb":  "Welcome",
		"version":  Version,
		"uuid":     s.uuid,
		"features": []string{"access-ready", "partitioned", "pluggable-storage-engines", "scheduler"},
		"vendor":   map[string]string{"name": "The Apache Software Foundation"},
	})
}

func (s *Server) handleAllDBs(w http.ResponseWriter, _ *http.Request) {
	names, err := s.store.databases()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleCreateDatabase(w http.ResponseWriter, r *http.Request) {
	if err := s.store.createDatabase(r.PathValue("db")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) handlePostDocument(w http.ResponseWriter, r *http.Request) {
	obj, err := readObject(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, _ := obj["_id"].(string)
	if id == "" {
		id = newDocID()
	}
	delete(obj, "_id")
	delete(obj, "_rev")

	doc, err := s.store.put(r.PathValue("db"), id, "", obj)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": doc.ID, "rev": doc.Rev})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.get(r.PathValue("db"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, doc.Body)
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	obj, err := readObject(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if bodyID, ok := obj["_id"].(string); ok && bodyID != id {
		writeError(w, badRequest("Document id must match the URL"))
		return
	}

	rev, _ := obj["_rev"].(string)
	if rev == "" {
		rev = r.URL.Query().Get("rev")
	}
	delete(obj, "_id")
	delete(obj, "_rev")

	doc, err := s.store.put(r.PathValue("db"), id, rev, obj)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": doc.ID, "rev": doc.Rev})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.remove(r.PathValue("db"), r.PathValue("id"), r.URL.Query().Get("rev"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": doc.ID, "rev": doc.Rev})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := decodeFindRequest(data, s.conf.DefaultLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	docs, err := s.store.live(r.PathValue("db"))
	if err != nil {
		writeError(w, err)
		return
	}

	results := []json.RawMessage{}
	skipped := 0
	for _, doc := range docs {
		if len(results) >= req.Limit {
			break
		}
		if !matches(doc.Body, req.Selector) {
			continue
		}
		if skipped < req.Skip {
			skipped++
			continue
		}

		projected, err := project(doc.Body, req.Fields)
		if err != nil {
			writeError(w, err)
			return
		}
		results = append(results, projected)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"docs":     results,
		"bookmark": "nil",
		"warning":  "No matching index found, create an index to optimize query time.",
	})
}

func readBody(r *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil, &couchError{http.StatusUnsupportedMediaType, "bad_content_type", "Content-Type must be application/json"}
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, badRequest("Invalid request body")
	}
	return data, nil
}

func readObject(r *http.Request) (map[string]any, error) {
	data, err := readBody(r)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	if err := checkSpecialKeys(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, err error) {
	var ce *couchError
	if !errors.As(err, &ce) {
		ce = &couchError{http.StatusInternalServerError, "unknown_error", err.Error()}
	}

	data, _ := json.Marshal(map[string]string{"error": ce.Name, "reason": ce.Reason})
	writeRaw(w, ce.Status, data)
}

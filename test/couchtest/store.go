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

// Package couchtest provides an in-memory document store speaking the
// subset of the CouchDB HTTP API used by the curation client.
package couchtest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

var (
	tblDatabases = "databases"
	tblDocuments = "documents"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblDatabases: {
			Name: tblDatabases,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Name"},
				},
			},
		},
		tblDocuments: {
			Name: tblDocuments,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "DB"},
							&memdb.StringFieldIndex{Field: "ID"},
						},
					},
				},
				"db": {
					Name:    "db",
					Indexer: &memdb.StringFieldIndex{Field: "DB"},
				},
			},
		},
	},
}

// couchError is an error reported to the client as {"error","reason"}.
type couchError struct {
	Status int
	Name   string
	Reason string
}

func (e *couchError) Error() string {
	return e.Name + ": " + e.Reason
}

var (
	errDatabaseNotFound = &couchError{http.StatusNotFound, "not_found", "Database does not exist."}
	errDatabaseExists   = &couchError{
		http.StatusPreconditionFailed, "file_exists",
		"The database could not be created, the file already exists.",
	}
	errMissing  = &couchError{http.StatusNotFound, "not_found", "missing"}
	errDeleted  = &couchError{http.StatusNotFound, "not_found", "deleted"}
	errConflict = &couchError{http.StatusConflict, "conflict", "Document update conflict."}
)

type databaseInfo struct {
	Name string
}

// document is one revision of a stored document. Body is the full JSON
// object including _id and _rev; it is nil for tombstones.
type document struct {
	DB      string
	ID      string
	Rev     string
	Deleted bool
	Body    []byte
}

// generation returns the numeric prefix of the revision.
func (d *document) generation() int {
	n, _ := strconv.Atoi(strings.SplitN(d.Rev, "-", 2)[0])
	return n
}

// store keeps databases and documents in go-memdb tables.
type store struct {
	db *memdb.MemDB
}

func newStore() (*store, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}
	return &store{db: memDB}, nil
}

func newDocID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func newRev(generation int, body []byte) string {
	sum := md5.Sum(body)
	return strconv.Itoa(generation) + "-" + hex.EncodeToString(sum[:])
}

func (s *store) createDatabase(name string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDatabases, "id", name)
	if err != nil {
		return fmt.Errorf("find database %s: %w", name, err)
	}
	if raw != nil {
		return errDatabaseExists
	}

	if err := txn.Insert(tblDatabases, &databaseInfo{Name: name}); err != nil {
		return fmt.Errorf("insert database %s: %w", name, err)
	}
	txn.Commit()
	return nil
}

func (s *store) databases() ([]string, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblDatabases, "id")
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	names := []string{}
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		names = append(names, raw.(*databaseInfo).Name)
	}
	sort.Strings(names)
	return names, nil
}

func hasDatabase(txn *memdb.Txn, name string) (bool, error) {
	raw, err := txn.First(tblDatabases, "id", name)
	if err != nil {
		return false, fmt.Errorf("find database %s: %w", name, err)
	}
	return raw != nil, nil
}

func findDocument(txn *memdb.Txn, db, id string) (*document, error) {
	raw, err := txn.First(tblDocuments, "id", db, id)
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	if raw == nil {
		return nil, nil
	}
	return raw.(*document), nil
}

// get returns the current revision of the document.
func (s *store) get(db, id string) (*document, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	if ok, err := hasDatabase(txn, db); err != nil {
		return nil, err
	} else if !ok {
		return nil, errDatabaseNotFound
	}

	doc, err := findDocument(txn, db, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errMissing
	}
	if doc.Deleted {
		return nil, errDeleted
	}
	return doc, nil
}

// put writes a new revision of the document. An empty rev creates the
// document; otherwise rev must be the current revision. body must not
// contain _id or _rev.
func (s *store) put(db, id, rev string, body map[string]any) (*document, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if ok, err := hasDatabase(txn, db); err != nil {
		return nil, err
	} else if !ok {
		return nil, errDatabaseNotFound
	}

	current, err := findDocument(txn, db, id)
	if err != nil {
		return nil, err
	}

	generation := 1
	switch {
	case current == nil && rev != "":
		return nil, errMissing
	case current != nil && current.Deleted && rev != "":
		return nil, errDeleted
	case current != nil && current.Deleted:
		generation = current.generation() + 1
	case current != nil && current.Rev != rev:
		return nil, errConflict
	case current != nil:
		generation = current.generation() + 1
	}

	content, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	newDoc := &document{DB: db, ID: id, Rev: newRev(generation, content)}
	if newDoc.Body, err = withMeta(body, id, newDoc.Rev); err != nil {
		return nil, err
	}

	if err := txn.Insert(tblDocuments, newDoc); err != nil {
		return nil, fmt.Errorf("insert document %s: %w", id, err)
	}
	txn.Commit()
	return newDoc, nil
}

// remove replaces the document with a tombstone.
func (s *store) remove(db, id, rev string) (*document, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if ok, err := hasDatabase(txn, db); err != nil {
		return nil, err
	} else if !ok {
		return nil, errDatabaseNotFound
	}

	current, err := findDocument(txn, db, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errMissing
	}
	if current.Deleted {
		return nil, errDeleted
	}
	if current.Rev != rev {
		return nil, errConflict
	}

	tombstone := &document{
		DB:      db,
		ID:      id,
		Deleted: true,
		Rev:     newRev(current.generation()+1, []byte(`{"_deleted":true}`)),
	}
	if err := txn.Insert(tblDocuments, tombstone); err != nil {
		return nil, fmt.Errorf("insert tombstone %s: %w", id, err)
	}
	txn.Commit()
	return tombstone, nil
}

// live returns the documents of the database that are not deleted, in id
// order.
func (s *store) live(db string) ([]*document, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	if ok, err := hasDatabase(txn, db); err != nil {
		return nil, err
	} else if !ok {
		return nil, errDatabaseNotFound
	}

	iter, err := txn.Get(tblDocuments, "db", db)
	if err != nil {
		return nil, fmt.Errorf("list documents of %s: %w", db, err)
	}

	var docs []*document
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		doc := raw.(*document)
		if doc.Deleted {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

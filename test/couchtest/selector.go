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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	errNotObject       = badRequest("Document must be a JSON object")
	errMissingSelector = badRequest("Missing required key: selector")
)

func badRequest(reason string) *couchError {
	return &couchError{http.StatusBadRequest, "bad_request", reason}
}

// allowedSpecialKeys are the underscore keys a document body may carry.
var allowedSpecialKeys = map[string]bool{
	"_id":          true,
	"_rev":         true,
	"_attachments": true,
}

// decodeObject decodes a JSON object keeping numbers as json.Number.
func decodeObject(data []byte) (map[string]any, error) {
	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// checkSpecialKeys rejects unknown top-level keys starting with '_'.
func checkSpecialKeys(obj map[string]any) error {
	for key := range obj {
		if strings.HasPrefix(key, "_") && !allowedSpecialKeys[key] {
			return &couchError{http.StatusBadRequest, "doc_validation", "Bad special document member: " + key}
		}
	}
	return nil
}

func encodeBody(body map[string]any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// withMeta encodes the body with the given _id and _rev.
func withMeta(body map[string]any, id, rev string) ([]byte, error) {
	full := maps.Clone(body)
	if full == nil {
		full = make(map[string]any)
	}
	full["_id"] = id
	full["_rev"] = rev
	return encodeBody(full)
}

// findRequest is the body of POST /{db}/_find.
type findRequest struct {
	Selector map[string]any
	Limit    int
	Skip     int
	Fields   []string
}

func decodeFindRequest(data []byte, defaultLimit int) (*findRequest, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	selector, ok := obj["selector"].(map[string]any)
	if !ok {
		return nil, errMissingSelector
	}
	for key, value := range selector {
		if _, err := conditionValue(value); err != nil {
			return nil, &couchError{http.StatusBadRequest, "invalid_operator", "Invalid operator for " + key}
		}
	}

	req := &findRequest{Selector: selector, Limit: defaultLimit}
	if req.Limit, err = intField(obj, "limit", defaultLimit); err != nil {
		return nil, err
	}
	if req.Skip, err = intField(obj, "skip", 0); err != nil {
		return nil, err
	}

	if raw, ok := obj["fields"]; ok {
		fields, ok := raw.([]any)
		if !ok {
			return nil, badRequest("fields must be an array of strings")
		}
		for _, f := range fields {
			name, ok := f.(string)
			if !ok {
				return nil, badRequest("fields must be an array of strings")
			}
			req.Fields = append(req.Fields, name)
		}
	}

	return req, nil
}

func intField(obj map[string]any, key string, def int) (int, error) {
	raw, ok := obj[key]
	if !ok {
		return def, nil
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, badRequest(key + " must be an integer")
	}
	v, err := n.Int64()
	if err != nil || v < 0 {
		return 0, badRequest(key + " must be a non-negative integer")
	}
	return int(v), nil
}

// conditionValue returns the value to compare against. Only implicit
// equality and $eq are supported.
func conditionValue(cond any) (any, error) {
	obj, ok := cond.(map[string]any)
	if !ok {
		return cond, nil
	}
	if len(obj) != 1 {
		return nil, errors.New("invalid operator")
	}
	v, ok := obj["$eq"]
	if !ok {
		return nil, errors.New("invalid operator")
	}
	if _, nested := v.(map[string]any); nested {
		return nil, errors.New("invalid operator")
	}
	return v, nil
}

// matches reports whether the JSON body satisfies every condition of the
// selector. Dotted keys address nested fields.
func matches(body []byte, selector map[string]any) bool {
	for key, cond := range selector {
		want, err := conditionValue(cond)
		if err != nil {
			return false
		}
		if !equals(gjson.GetBytes(body, key), want) {
			return false
		}
	}
	return true
}

func equals(got gjson.Result, want any) bool {
	if !got.Exists() {
		return false
	}

	switch v := want.(type) {
	case nil:
		return got.Type == gjson.Null
	case string:
		return got.Type == gjson.String && got.Str == v
	case bool:
		if v {
			return got.Type == gjson.True
		}
		return got.Type == gjson.False
	case json.Number:
		if got.Type != gjson.Number {
			return false
		}
		if got.Raw == v.String() {
			return true
		}
		f, err := v.Float64()
		return err == nil && got.Num == f
	default:
		return false
	}
}

// project returns the body restricted to the given top-level fields.
func project(body []byte, fields []string) (json.RawMessage, error) {
	if len(fields) == 0 {
		return body, nil
	}

	projected := make(map[string]json.RawMessage, len(fields))
	for _, field := range fields {
		result := gjson.GetBytes(body, field)
		if !result.Exists() {
			continue
		}
		projected[field] = json.RawMessage(result.Raw)
	}

	data, err := json.Marshal(projected)
	if err != nil {
		return nil, fmt.Errorf("project document: %w", err)
	}
	return data, nil
}

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

package types

import (
	"maps"
)

// Selector is a conjunction of equality conditions keyed by wire field
// name. Values are scalars: strings, numbers, booleans or nil.
type Selector map[string]any

// LicenseSelector returns a selector matching every license document.
func LicenseSelector() Selector {
	return Selector{FieldType: DocumentTypeLicense}
}

// And returns a new selector holding the conditions of s and other. On a
// shared key the value of other wins.
func (s Selector) And(other Selector) Selector {
	merged := make(Selector, len(s)+len(other))
	maps.Copy(merged, s)
	maps.Copy(merged, other)
	return merged
}

// Query is the body of a selector query.
type Query struct {
	// Selector is the condition documents must satisfy.
	Selector Selector `json:"selector"`

	// Limit is the maximum number of documents to return. Zero sends no
	// limit and leaves the store default in effect.
	Limit int `json:"limit,omitempty"`

	// Fields restricts the returned documents to the given fields.
	Fields []string `json:"fields,omitempty"`
}

// FindResponse is the response of a selector query.
type FindResponse struct {
	// Docs are the matching documents.
	Docs []*LicenseDocument `json:"docs"`

	// Bookmark is the pagination token of the store.
	Bookmark string `json:"bookmark,omitempty"`

	// Warning is set when the store could not use an index.
	Warning string `json:"warning,omitempty"`
}

// WriteResult is the response of a successful write.
type WriteResult struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// LicenseStats holds the number of license documents per category.
type LicenseStats struct {
	// Total is the number of license documents.
	Total int `json:"total" yaml:"total"`

	// OSIApproved is the number of OSI-approved licenses.
	OSIApproved int `json:"osiApproved" yaml:"osiApproved"`

	// Checked is the number of reviewed licenses.
	Checked int `json:"checked" yaml:"checked"`

	// Unchecked is the number of licenses waiting for review.
	Unchecked int `json:"unchecked" yaml:"unchecked"`
}

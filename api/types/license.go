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

// Package types provides the license document model shared by the curation
// client, the document-store transport and licensectl.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/sw360/license-curator/internal/validation"
)

// DocumentTypeLicense is the value of the type field of license documents.
const DocumentTypeLicense = "license"

// Wire names of the fields of a license document.
const (
	FieldID          = "_id"
	FieldRevision    = "_rev"
	FieldType        = "type"
	FieldFullName    = "fullName"
	FieldShortName   = "shortName"
	FieldText        = "text"
	FieldOSIApproved = "OSIApproved"
	FieldChecked     = "checked"
)

// ErrInvalidDocument is returned when the payload is not a JSON object.
var ErrInvalidDocument = errors.New("license document must be a JSON object")

// reservedKeys can not be used as extension keys.
var reservedKeys = map[string]bool{
	FieldID:          true,
	FieldRevision:    true,
	FieldType:        true,
	FieldFullName:    true,
	FieldShortName:   true,
	FieldText:        true,
	FieldOSIApproved: true,
	FieldChecked:     true,
}

// IsReservedKey returns whether the given key is a known wire name.
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}

// FieldViolation is used to describe a single bad field.
type FieldViolation struct {
	// Field is the name of the bad field.
	Field string
	// Description is a description of why the field is bad.
	Description string
}

// InvalidFieldsError is used to describe invalid fields.
type InvalidFieldsError struct {
	Violations []*FieldViolation
}

// Error returns the error message.
func (e *InvalidFieldsError) Error() string {
	if len(e.Violations) == 0 {
		return "invalid license fields"
	}

	msg := "invalid license fields: " + e.Violations[0].Description
	if len(e.Violations) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e.Violations)-1)
	}
	return msg
}

// LicenseFields is the caller-mutable part of a license document.
type LicenseFields struct {
	// FullName is the human-readable name of the license.
	FullName string `json:"fullName" yaml:"fullName" validate:"required,not_blank"`

	// ShortName is the SPDX identifier of the license by convention. It is
	// not unique.
	ShortName string `json:"shortName" yaml:"shortName" validate:"required,not_blank"`

	// Text is the license text.
	Text string `json:"text" yaml:"text,omitempty"`

	// OSIApproved reports whether the license is approved by the OSI.
	OSIApproved bool `json:"OSIApproved" yaml:"OSIApproved"`

	// Checked reports whether a curator has reviewed the license.
	Checked bool `json:"checked" yaml:"checked"`

	// Extensions holds the fields this package does not know about. They
	// are written back verbatim.
	Extensions map[string]any `json:"-" yaml:"extensions,omitempty"`
}

// Validate validates the LicenseFields.
func (f *LicenseFields) Validate() error {
	invalidFieldsError := &InvalidFieldsError{}

	if err := validation.ValidateStruct(f); err != nil {
		structError := &validation.StructError{}
		if !errors.As(err, &structError) {
			return err
		}
		for _, v := range structError.Violations {
			invalidFieldsError.Violations = append(invalidFieldsError.Violations, &FieldViolation{
				Field:       v.Field,
				Description: v.Description,
			})
		}
	}

	keys := slices.Sorted(maps.Keys(f.Extensions))
	for _, key := range keys {
		if key == "" || IsReservedKey(key) {
			invalidFieldsError.Violations = append(invalidFieldsError.Violations, &FieldViolation{
				Field:       "Extensions",
				Description: fmt.Sprintf("extension key %q is reserved", key),
			})
		}
	}

	if len(invalidFieldsError.Violations) > 0 {
		return invalidFieldsError
	}
	return nil
}

// Clone returns a copy of the fields. Extension values are shared.
func (f LicenseFields) Clone() LicenseFields {
	f.Extensions = maps.Clone(f.Extensions)
	return f
}

// LicenseDocument is a license as stored in the document store.
type LicenseDocument struct {
	// ID is assigned by the store and never changes.
	ID string `yaml:"id"`

	// Revision is the revision token of the last write.
	Revision string `yaml:"rev"`

	// Type is "license" for license documents.
	Type string `yaml:"type"`

	LicenseFields `yaml:",inline"`
}

// IsLicense returns whether the document is a license document.
func (d *LicenseDocument) IsLicense() bool {
	return d.Type == DocumentTypeLicense
}

// StringField returns the named field as text, looking at extension
// fields when the name is not a known one. Booleans and numbers are
// formatted; null, objects and arrays are not text and report false.
func (d *LicenseDocument) StringField(name string) (string, bool) {
	switch name {
	case FieldID:
		return d.ID, true
	case FieldRevision:
		return d.Revision, true
	case FieldType:
		return d.Type, true
	case FieldFullName:
		return d.FullName, true
	case FieldShortName:
		return d.ShortName, true
	case FieldText:
		return d.Text, true
	case FieldOSIApproved:
		return strconv.FormatBool(d.OSIApproved), true
	case FieldChecked:
		return strconv.FormatBool(d.Checked), true
	}

	switch v := d.Extensions[name].(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	case int, int64, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// wireFields is the known part of the wire form.
type wireFields struct {
	ID          string `json:"_id,omitempty"`
	Revision    string `json:"_rev,omitempty"`
	Type        string `json:"type"`
	FullName    string `json:"fullName"`
	ShortName   string `json:"shortName"`
	Text        string `json:"text"`
	OSIApproved bool   `json:"OSIApproved"`
	Checked     bool   `json:"checked"`
}

// MarshalJSON encodes the document as one flat JSON object. Known fields
// win over extension fields with the same name.
func (d LicenseDocument) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(wireFields{
		ID:          d.ID,
		Revision:    d.Revision,
		Type:        d.Type,
		FullName:    d.FullName,
		ShortName:   d.ShortName,
		Text:        d.Text,
		OSIApproved: d.OSIApproved,
		Checked:     d.Checked,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal license document: %w", err)
	}

	var extra map[string]any
	for key, value := range d.Extensions {
		if IsReservedKey(key) {
			continue
		}
		if extra == nil {
			extra = make(map[string]any, len(d.Extensions))
		}
		extra[key] = value
	}
	if len(extra) == 0 {
		return known, nil
	}

	rest, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("marshal license extensions: %w", err)
	}

	// known and rest are both non-empty objects: splice them together.
	buf := bytes.NewBuffer(make([]byte, 0, len(known)+len(rest)))
	buf.Write(known[:len(known)-1])
	buf.WriteByte(',')
	buf.Write(rest[1:])
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object. Unknown keys land in
// Extensions, with numbers kept as json.Number. A known key holding a value
// of another JSON type is dropped and its field stays zero, so one odd
// document does not fail the decoding of a whole query result.
func (d *LicenseDocument) UnmarshalJSON(data []byte) error {
	var all map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&all); err != nil {
		return fmt.Errorf("unmarshal license document: %w", err)
	}
	if all == nil {
		return ErrInvalidDocument
	}

	*d = LicenseDocument{}
	d.ID, _ = all[FieldID].(string)
	d.Revision, _ = all[FieldRevision].(string)
	d.Type, _ = all[FieldType].(string)
	d.FullName, _ = all[FieldFullName].(string)
	d.ShortName, _ = all[FieldShortName].(string)
	d.Text, _ = all[FieldText].(string)
	d.OSIApproved, _ = all[FieldOSIApproved].(bool)
	d.Checked, _ = all[FieldChecked].(bool)

	for key, value := range all {
		if IsReservedKey(key) {
			continue
		}
		if d.Extensions == nil {
			d.Extensions = make(map[string]any)
		}
		d.Extensions[key] = value
	}

	return nil
}

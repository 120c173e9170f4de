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

package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw360/license-curator/api/types"
)

func TestLicenseFields(t *testing.T) {
	var invalidFieldsError *types.InvalidFieldsError

	t.Run("validation test", func(t *testing.T) {
		fields := &types.LicenseFields{FullName: "MIT License", ShortName: "MIT"}
		assert.NoError(t, fields.Validate())

		fields = &types.LicenseFields{ShortName: "MIT"}
		require.ErrorAs(t, fields.Validate(), &invalidFieldsError)
		assert.Len(t, invalidFieldsError.Violations, 1)
		assert.Equal(t, "FullName", invalidFieldsError.Violations[0].Field)

		fields = &types.LicenseFields{FullName: "  ", ShortName: ""}
		require.ErrorAs(t, fields.Validate(), &invalidFieldsError)
		assert.Len(t, invalidFieldsError.Violations, 2)
	})

	t.Run("reserved extension key test", func(t *testing.T) {
		fields := &types.LicenseFields{
			FullName:   "MIT License",
			ShortName:  "MIT",
			Extensions: map[string]any{"_rev": "1-abc", "spdxUrl": "https://spdx.org/licenses/MIT"},
		}
		require.ErrorAs(t, fields.Validate(), &invalidFieldsError)
		assert.Len(t, invalidFieldsError.Violations, 1)
		assert.Contains(t, invalidFieldsError.Violations[0].Description, "_rev")
	})

	t.Run("clone test", func(t *testing.T) {
		fields := types.LicenseFields{FullName: "MIT License", Extensions: map[string]any{"a": "b"}}
		cloned := fields.Clone()
		cloned.Extensions["c"] = "d"
		assert.Len(t, fields.Extensions, 1)
	})
}

func TestLicenseDocumentJSON(t *testing.T) {
	t.Run("flattens extensions test", func(t *testing.T) {
		doc := types.LicenseDocument{
			ID:       "abc",
			Revision: "1-xyz",
			Type:     types.DocumentTypeLicense,
			LicenseFields: types.LicenseFields{
				FullName:    "MIT License",
				ShortName:   "MIT",
				OSIApproved: true,
				Extensions:  map[string]any{"family": "permissive", "fullName": "shadowed"},
			},
		}

		data, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"_id": "abc",
			"_rev": "1-xyz",
			"type": "license",
			"fullName": "MIT License",
			"shortName": "MIT",
			"text": "",
			"OSIApproved": true,
			"checked": false,
			"family": "permissive"
		}`, string(data))
	})

	t.Run("omits id and revision before first persist test", func(t *testing.T) {
		doc := types.LicenseDocument{
			Type:          types.DocumentTypeLicense,
			LicenseFields: types.LicenseFields{FullName: "Apache License 2.0", ShortName: "Apache-2.0"},
		}

		data, err := json.Marshal(&doc)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.NotContains(t, raw, "_id")
		assert.NotContains(t, raw, "_rev")
		assert.Equal(t, "license", raw["type"])
	})

	t.Run("round trips unknown fields test", func(t *testing.T) {
		input := `{
			"_id": "7f1c",
			"_rev": "3-aa",
			"type": "license",
			"fullName": "GNU General Public License v2.0 only",
			"shortName": "GPL-2.0-only",
			"checked": true,
			"externalIds": {"spdx": "GPL-2.0-only"},
			"riskLevel": 12345678901234567890,
			"obligations": ["disclose-source", "same-license"]
		}`

		var doc types.LicenseDocument
		require.NoError(t, json.Unmarshal([]byte(input), &doc))
		assert.Equal(t, "7f1c", doc.ID)
		assert.Equal(t, "3-aa", doc.Revision)
		assert.True(t, doc.IsLicense())
		assert.True(t, doc.Checked)
		assert.False(t, doc.OSIApproved)
		assert.Len(t, doc.Extensions, 3)
		assert.Equal(t, json.Number("12345678901234567890"), doc.Extensions["riskLevel"])

		data, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"riskLevel":12345678901234567890`)

		var again types.LicenseDocument
		require.NoError(t, json.Unmarshal(data, &again))
		assert.Equal(t, doc, again)
	})

	t.Run("rejects non object test", func(t *testing.T) {
		var doc types.LicenseDocument
		assert.ErrorIs(t, json.Unmarshal([]byte(`null`), &doc), types.ErrInvalidDocument)
		assert.Error(t, json.Unmarshal([]byte(`["license"]`), &doc))
	})

	t.Run("mistyped known fields test", func(t *testing.T) {
		var doc types.LicenseDocument
		require.NoError(t, json.Unmarshal([]byte(`{"_id":"x","type":7,"name":"x"}`), &doc))
		assert.Equal(t, "x", doc.ID)
		assert.Empty(t, doc.Type)
		assert.False(t, doc.IsLicense())
		assert.Equal(t, map[string]any{"name": "x"}, doc.Extensions)

		input := `{"type":"license","fullName":"MIT License","shortName":"MIT",` +
			`"text":{"body":"..."},"checked":"yes","OSIApproved":true}`
		require.NoError(t, json.Unmarshal([]byte(input), &doc))
		assert.True(t, doc.IsLicense())
		assert.Equal(t, "MIT", doc.ShortName)
		assert.Empty(t, doc.Text)
		assert.False(t, doc.Checked)
		assert.True(t, doc.OSIApproved)
		assert.Empty(t, doc.Extensions)

		var res types.FindResponse
		require.NoError(t, json.Unmarshal([]byte(`{"docs":[`+input+`,{"type":"license","shortName":"BSD"}]}`), &res))
		require.Len(t, res.Docs, 2)
		assert.Equal(t, "BSD", res.Docs[1].ShortName)
	})

	t.Run("string field test", func(t *testing.T) {
		doc := types.LicenseDocument{
			LicenseFields: types.LicenseFields{
				ShortName:  "BSD-3-Clause",
				Extensions: map[string]any{"family": "permissive", "rank": json.Number("3")},
			},
		}

		v, ok := doc.StringField(types.FieldShortName)
		assert.True(t, ok)
		assert.Equal(t, "BSD-3-Clause", v)

		v, ok = doc.StringField("family")
		assert.True(t, ok)
		assert.Equal(t, "permissive", v)

		v, ok = doc.StringField("rank")
		assert.True(t, ok)
		assert.Equal(t, "3", v)

		v, ok = doc.StringField(types.FieldChecked)
		assert.True(t, ok)
		assert.Equal(t, "false", v)

		doc.Extensions["copyleft"] = true
		v, ok = doc.StringField("copyleft")
		assert.True(t, ok)
		assert.Equal(t, "true", v)

		doc.Extensions["aliases"] = []any{"BSD-new"}
		doc.Extensions["note"] = nil
		_, ok = doc.StringField("aliases")
		assert.False(t, ok)
		_, ok = doc.StringField("note")
		assert.False(t, ok)
		_, ok = doc.StringField("missing")
		assert.False(t, ok)
	})
}

func TestSelector(t *testing.T) {
	selector := types.Selector{"shortName": "MIT", "type": "other"}.And(types.LicenseSelector())
	assert.Equal(t, types.Selector{"shortName": "MIT", "type": "license"}, selector)

	data, err := json.Marshal(types.Query{Selector: types.LicenseSelector()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"selector":{"type":"license"}}`, string(data))

	data, err = json.Marshal(types.Query{Selector: types.LicenseSelector(), Limit: 10, Fields: []string{"_id", "type"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"selector":{"type":"license"},"limit":10,"fields":["_id","type"]}`, string(data))
}

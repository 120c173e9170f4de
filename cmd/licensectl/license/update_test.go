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

package license

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/curation"
	"github.com/sw360/license-curator/test/helper"
)

func TestApplyWithRetry(t *testing.T) {
	retryInterval = time.Millisecond
	ctx := context.Background()

	t.Run("re-apply change after conflict test", func(t *testing.T) {
		cli, _ := helper.NewClient(t)
		id, _, err := cli.Create(ctx, helper.MIT())
		require.NoError(t, err)

		attempts := 0
		rev, err := applyWithRetry(ctx, cli, id, DefaultMaxRetries, func(fields *types.LicenseFields) error {
			attempts++
			if attempts == 1 {
				// another writer renames the license first
				doc, err := cli.Get(ctx, id)
				require.NoError(t, err)
				renamed := doc.LicenseFields.Clone()
				renamed.FullName = "The MIT License"
				_, err = cli.Update(ctx, id, doc.Revision, renamed)
				require.NoError(t, err)
			}
			fields.Checked = true
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
		assert.True(t, strings.HasPrefix(rev, "3-"))

		doc, err := cli.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, doc.Checked)
		assert.Equal(t, "The MIT License", doc.FullName)
	})

	t.Run("give up after max retries test", func(t *testing.T) {
		cli, _ := helper.NewClient(t)
		id, _, err := cli.Create(ctx, helper.MIT())
		require.NoError(t, err)

		attempts := 0
		_, err = applyWithRetry(ctx, cli, id, 2, func(fields *types.LicenseFields) error {
			attempts++
			doc, err := cli.Get(ctx, id)
			require.NoError(t, err)
			_, err = cli.Update(ctx, id, doc.Revision, doc.LicenseFields)
			require.NoError(t, err)
			fields.Checked = true
			return nil
		})
		assert.ErrorIs(t, err, curation.ErrRevisionConflict)
		assert.Equal(t, 3, attempts)
	})

	t.Run("stop on other errors test", func(t *testing.T) {
		cli, _ := helper.NewClient(t)

		attempts := 0
		_, err := applyWithRetry(ctx, cli, "missing", DefaultMaxRetries, func(fields *types.LicenseFields) error {
			attempts++
			return nil
		})
		assert.ErrorIs(t, err, curation.ErrNotFound)
		assert.Zero(t, attempts)

		id, _, err := cli.Create(ctx, helper.MIT())
		require.NoError(t, err)
		_, err = applyWithRetry(ctx, cli, id, DefaultMaxRetries, func(fields *types.LicenseFields) error {
			attempts++
			fields.ShortName = " "
			return nil
		})
		assert.ErrorIs(t, err, curation.ErrValidation)
		assert.Equal(t, 1, attempts)
	})
}

func TestParsePairs(t *testing.T) {
	values, err := parsePairs([]string{"a=true", "b=false", "c=null", "d=12", "e=1.5", "f=text", "g=x=y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": true,
		"b": false,
		"c": nil,
		"d": json.Number("12"),
		"e": json.Number("1.5"),
		"f": "text",
		"g": "x=y",
	}, values)

	values, err = parsePairs(nil)
	assert.NoError(t, err)
	assert.Nil(t, values)

	_, err = parsePairs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parsePairs([]string{"=value"})
	assert.Error(t, err)
}

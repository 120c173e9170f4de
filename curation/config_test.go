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

package curation_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw360/license-curator/curation"
)

func TestConfig(t *testing.T) {
	t.Run("default config test", func(t *testing.T) {
		conf := curation.NewConfig()
		assert.NoError(t, conf.Validate())
		assert.Equal(t, "http://localhost:5984", conf.URL)
		assert.Equal(t, "sw360db", conf.Database)

		timeout, err := conf.ParseRequestTimeout()
		assert.NoError(t, err)
		assert.Equal(t, curation.DefaultRequestTimeout, timeout)
	})

	t.Run("validate test", func(t *testing.T) {
		conf := curation.NewConfig()
		conf.URL = "localhost"
		assert.Error(t, conf.Validate())

		conf = curation.NewConfig()
		conf.Database = " "
		assert.Error(t, conf.Validate())

		conf = curation.NewConfig()
		conf.RequestTimeout = "soon"
		assert.Error(t, conf.Validate())
		_, err := conf.ParseRequestTimeout()
		assert.Error(t, err)

		conf.RequestTimeout = "-1s"
		_, err = conf.ParseRequestTimeout()
		assert.Error(t, err)

		conf.RequestTimeout = ""
		assert.NoError(t, conf.Validate())
	})

	t.Run("config file test", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("URL: https://couch.example.com\nUsername: curator\nRequestTimeout: 5s\n"), 0o600))

		conf, err := curation.NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://couch.example.com", conf.URL)
		assert.Equal(t, "curator", conf.Username)
		assert.Equal(t, curation.DefaultDatabase, conf.Database)

		timeout, err := conf.ParseRequestTimeout()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, timeout)

		_, err = curation.NewConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

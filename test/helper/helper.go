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

// Package helper provides helper functions for testing.
package helper

import (
	"testing"
	"time"

	"github.com/sw360/license-curator/api/types"
	"github.com/sw360/license-curator/curation"
	"github.com/sw360/license-curator/internal/logging"
	"github.com/sw360/license-curator/test/couchtest"
)

// Below are the values of the store used in the test.
var (
	Database       = curation.DefaultDatabase
	Username       = curation.DefaultUsername
	Password       = curation.DefaultPassword
	RequestTimeout = 5 * time.Second
)

// StartStore starts a test store holding an empty database and returns its
// URL with the store itself.
func StartStore(t testing.TB) (string, *couchtest.Server) {
	t.Helper()

	ts, store := couchtest.NewServer(t, couchtest.Config{
		Username:  Username,
		Password:  Password,
		Databases: []string{Database},
		Logger:    logging.New("couchtest"),
	})
	return ts.URL, store
}

// TestConfig returns the configuration of a client of the store at url.
func TestConfig(url string) *curation.Config {
	return &curation.Config{
		URL:            url,
		Username:       Username,
		Password:       Password,
		Database:       Database,
		RequestTimeout: RequestTimeout.String(),
	}
}

// NewClient starts a test store and returns a client of it.
func NewClient(t testing.TB, opts ...curation.Option) (*curation.Client, *couchtest.Server) {
	t.Helper()

	url, store := StartStore(t)
	return curation.New(TestConfig(url), opts...), store
}

// MIT returns the fields of the MIT license.
func MIT() types.LicenseFields {
	return types.LicenseFields{
		FullName:    "MIT License",
		ShortName:   "MIT",
		Text:        "Permission is hereby granted, free of charge, to any person obtaining a copy...",
		OSIApproved: true,
		Checked:     false,
	}
}

// Licenses returns the fields of a few well-known licenses.
func Licenses() []types.LicenseFields {
	return []types.LicenseFields{
		MIT(),
		{
			FullName:    "Apache License 2.0",
			ShortName:   "Apache-2.0",
			OSIApproved: true,
			Checked:     true,
		},
		{
			FullName:    "GNU General Public License v2.0 only",
			ShortName:   "GPL-2.0-only",
			OSIApproved: true,
		},
		{
			FullName:  "Proprietary License",
			ShortName: "Proprietary",
			Checked:   true,
		},
	}
}

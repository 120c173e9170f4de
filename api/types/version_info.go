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

// VersionInfo represents information of version.
type VersionInfo struct {
	// ClientVersion is the licensectl version.
	ClientVersion *VersionDetail `json:"clientVersion,omitempty" yaml:"clientVersion,omitempty"`

	// ServerVersion is the version reported by the document store.
	ServerVersion *ServerInfo `json:"serverVersion,omitempty" yaml:"serverVersion,omitempty"`
}

// VersionDetail represents detail information of version.
type VersionDetail struct {
	// Version
	Version string `json:"version" yaml:"version"`

	// GitCommit
	GitCommit string `json:"gitCommit,omitempty" yaml:"gitCommit,omitempty"`

	// GoVersion
	GoVersion string `json:"goVersion" yaml:"goVersion"`

	// BuildDate
	BuildDate string `json:"buildDate,omitempty" yaml:"buildDate,omitempty"`
}

// ServerInfo is the welcome message returned by the root of the document
// store.
type ServerInfo struct {
	// CouchDB is the greeting of the server, "Welcome" on CouchDB.
	CouchDB string `json:"couchdb" yaml:"couchdb"`

	// Version is the version of the server.
	Version string `json:"version" yaml:"version"`

	// GitSHA is the commit the server was built from.
	GitSHA string `json:"git_sha,omitempty" yaml:"gitSHA,omitempty"`

	// UUID is the unique identifier of the server instance.
	UUID string `json:"uuid,omitempty" yaml:"uuid,omitempty"`

	// Features lists the optional features enabled on the server.
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`

	// Vendor describes who distributes the server.
	Vendor *Vendor `json:"vendor,omitempty" yaml:"vendor,omitempty"`
}

// Vendor describes the distributor of the document store.
type Vendor struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

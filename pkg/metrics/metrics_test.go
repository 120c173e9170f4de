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

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m, err := NewMetrics()
	assert.NoError(t, err)

	t.Run("request counter", func(t *testing.T) {
		m.ObserveRequest("sw360db", "update", "PUT", "ok", 10*time.Millisecond)
		m.ObserveRequest("sw360db", "update", "PUT", "failed_precondition", 5*time.Millisecond)
		m.ObserveRequest("sw360db", "update", "PUT", "ok", 7*time.Millisecond)

		expected := `
# HELP license_curator_store_requests_total Total number of requests sent to the document store by outcome.
# TYPE license_curator_store_requests_total counter
license_curator_store_requests_total{database="sw360db",method="PUT",operation="update",outcome="failed_precondition"} 1
license_curator_store_requests_total{database="sw360db",method="PUT",operation="update",outcome="ok"} 2
`
		assert.NoError(t, testutil.CollectAndCompare(m.storeRequestsTotal, strings.NewReader(expected)))
		assert.Equal(t, 1, testutil.CollectAndCount(m.storeRequestSeconds))
	})

	t.Run("conflicts and documents", func(t *testing.T) {
		m.AddRevisionConflict("sw360db", "delete")
		m.AddDocumentsReturned("sw360db", 3)
		m.AddDocumentsReturned("sw360db", 2)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.revisionConflictsTotal.WithLabelValues("sw360db", "delete")))
		assert.Equal(t, float64(5), testutil.ToFloat64(m.documentsReturnedTotal.WithLabelValues("sw360db")))
	})

	t.Run("registry gathers", func(t *testing.T) {
		families, err := m.Registry().Gather()
		assert.NoError(t, err)

		names := make(map[string]bool)
		for _, family := range families {
			names[family.GetName()] = true
		}
		assert.True(t, names["license_curator_client_version"])
		assert.True(t, names["license_curator_store_request_seconds"])
	})
}

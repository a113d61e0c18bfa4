/*
 *     Copyright 2023 The Dragonfly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"d7y.io/imbalance/trainer/config"
)

func TestMetrics_New(t *testing.T) {
	assert := assert.New(t)
	svr := New(&config.MetricsConfig{Enable: true, Addr: ":8000"})
	assert.Equal(":8000", svr.Addr)

	ClassWeightGauge.WithLabelValues("0").Set(2.1528)
	assert.Equal(2.1528, testutil.ToFloat64(ClassWeightGauge.WithLabelValues("0")))

	recorder := httptest.NewRecorder()
	svr.Handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(recorder.Result().Body)
	assert.NoError(err)
	assert.Contains(string(body), "imbalance_trainer_version")
	assert.Contains(string(body), "imbalance_trainer_class_weight")
}

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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelType(t *testing.T) {
	tests := []struct {
		name      string
		modelType ModelType
		expect    func(t *testing.T, m ModelType)
	}{
		{
			name:      "uniform",
			modelType: ModelTypeUniform,
			expect: func(t *testing.T, m ModelType) {
				assert := assert.New(t)
				assert.Equal(ModelTypeUniformName, m.Name())
				assert.Equal(m, ParseModelType(m.Name()))
			},
		},
		{
			name:      "weighted",
			modelType: ModelTypeWeighted,
			expect: func(t *testing.T, m ModelType) {
				assert := assert.New(t)
				assert.Equal(ModelTypeWeightedName, m.Name())
				assert.Equal(m, ParseModelType(m.Name()))
			},
		},
		{
			name:      "unknown name",
			modelType: ParseModelType("foo"),
			expect: func(t *testing.T, m ModelType) {
				assert := assert.New(t)
				assert.Equal(ModelTypeUniform, m)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, tc.modelType)
		})
	}
}

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

const (
	// ImbalanceName is the name of the binary.
	ImbalanceName = "imbalance"

	// MetricsNamespace is the namespace of all metrics.
	MetricsNamespace = "imbalance"

	// TrainerMetricsName is the subsystem of training metrics.
	TrainerMetricsName = "trainer"
)

// ModelType is the class weighting a model is trained with.
type ModelType int

const (
	// ModelTypeUniform weighs every sample equally.
	ModelTypeUniform ModelType = iota

	// ModelTypeWeighted weighs samples by the balanced weight of their class.
	ModelTypeWeighted
)

const (
	// ModelTypeUniformName is the name of uniform model type.
	ModelTypeUniformName = "uniform"

	// ModelTypeWeightedName is the name of weighted model type.
	ModelTypeWeightedName = "weighted"
)

// Name returns the name of model type.
func (m ModelType) Name() string {
	if m == ModelTypeWeighted {
		return ModelTypeWeightedName
	}

	return ModelTypeUniformName
}

// ParseModelType parses model type by name.
func ParseModelType(name string) ModelType {
	if name == ModelTypeWeightedName {
		return ModelTypeWeighted
	}

	return ModelTypeUniform
}

const (
	// DatasetSourceBuiltin is the generated diagnostic dataset.
	DatasetSourceBuiltin = "builtin"

	// DatasetSourceCSV is a csv file on disk.
	DatasetSourceCSV = "csv"
)

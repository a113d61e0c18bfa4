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

package preprocess

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"

	"d7y.io/imbalance/trainer/dataset"
)

// StandardScaler rescales every feature to zero mean and unit variance.
type StandardScaler struct {
	// Mean of each feature over the fitted set.
	Mean []float64 `json:"mean"`

	// Scale is the population standard deviation of each feature, 1 for
	// constant features.
	Scale []float64 `json:"scale"`
}

// FitStandardScaler computes the per feature statistics of set.
func FitStandardScaler(set *dataset.SampleSet) (*StandardScaler, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	if set.Len() == 0 {
		return nil, errors.New("can not fit scaler on empty set")
	}

	scaler := &StandardScaler{
		Mean:  make([]float64, len(set.FeatureNames)),
		Scale: make([]float64, len(set.FeatureNames)),
	}

	column := make(stats.Float64Data, set.Len())
	for j, name := range set.FeatureNames {
		for i, row := range set.Features {
			column[i] = row[j]
		}

		mean, err := stats.Mean(column)
		if err != nil {
			return nil, fmt.Errorf("mean of %s: %w", name, err)
		}

		stddev, err := stats.StandardDeviationPopulation(column)
		if err != nil {
			return nil, fmt.Errorf("standard deviation of %s: %w", name, err)
		}

		if stddev == 0 {
			stddev = 1
		}

		scaler.Mean[j] = mean
		scaler.Scale[j] = stddev
	}

	return scaler, nil
}

// Transform returns a standardized copy of set.
func (s *StandardScaler) Transform(set *dataset.SampleSet) (*dataset.SampleSet, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	if len(set.FeatureNames) != len(s.Mean) {
		return nil, fmt.Errorf("scaler fitted on %d features, got %d: %w", len(s.Mean), len(set.FeatureNames), dataset.ErrShapeMismatch)
	}

	out := &dataset.SampleSet{
		FeatureNames: set.FeatureNames,
		Features:     make([][]float64, set.Len()),
		Labels:       set.Labels,
	}

	for i, row := range set.Features {
		scaled := make([]float64, len(row))
		for j, x := range row {
			scaled[j] = (x - s.Mean[j]) / s.Scale[j]
		}
		out.Features[i] = scaled
	}

	return out, nil
}

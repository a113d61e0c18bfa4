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

package dataset

import (
	"context"
	"errors"
	"fmt"

	"d7y.io/imbalance/pkg/classweight"
)

// ErrShapeMismatch is returned when features and labels do not line up.
var ErrShapeMismatch = errors.New("shape mismatch")

const (
	// NegativeLabel is the label of the negative class.
	NegativeLabel = 0

	// PositiveLabel is the label of the positive class.
	PositiveLabel = 1
)

// Provider is the interface used for loading a sample set.
type Provider interface {
	// Load returns the whole sample set.
	Load(context.Context) (*SampleSet, error)
}

// SampleSet is an ordered collection of feature vectors and their labels.
type SampleSet struct {
	// FeatureNames names each feature column.
	FeatureNames []string

	// Features is one row per sample.
	Features [][]float64

	// Labels is the class of each row.
	Labels []int
}

// Validate checks that every row has one label and len(FeatureNames) columns.
func (s *SampleSet) Validate() error {
	if len(s.Features) != len(s.Labels) {
		return fmt.Errorf("%d feature rows but %d labels: %w", len(s.Features), len(s.Labels), ErrShapeMismatch)
	}

	for i, row := range s.Features {
		if len(row) != len(s.FeatureNames) {
			return fmt.Errorf("row %d has %d features, expected %d: %w", i, len(row), len(s.FeatureNames), ErrShapeMismatch)
		}
	}

	return nil
}

// Len returns the number of samples.
func (s *SampleSet) Len() int {
	return len(s.Labels)
}

// ClassCounts returns the number of samples of each label.
func (s *SampleSet) ClassCounts() map[int]int {
	return classweight.Counts(s.Labels)
}

// PositiveRate returns the fraction of samples labeled positive.
func (s *SampleSet) PositiveRate(positive int) float64 {
	if len(s.Labels) == 0 {
		return 0
	}

	return float64(s.ClassCounts()[positive]) / float64(len(s.Labels))
}

// subset returns the rows at indexes, in the order given. Rows are shared
// with s, which is never modified afterwards.
func (s *SampleSet) subset(indexes []int) *SampleSet {
	out := &SampleSet{
		FeatureNames: s.FeatureNames,
		Features:     make([][]float64, 0, len(indexes)),
		Labels:       make([]int, 0, len(indexes)),
	}

	for _, i := range indexes {
		out.Features = append(out.Features, s.Features[i])
		out.Labels = append(out.Labels, s.Labels[i])
	}

	return out
}

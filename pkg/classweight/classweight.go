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

// Package classweight computes per-class loss multipliers that counteract
// a skewed label distribution.
package classweight

import (
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrInvalidInput is returned when weights can not be derived from the labels.
var ErrInvalidInput = errors.New("invalid input")

// Weights maps a class identifier to its loss multiplier.
type Weights map[int]float64

// Of returns the weight of label. A nil Weights is uniform and returns 1
// for every label.
func (w Weights) Of(label int) (float64, bool) {
	if w == nil {
		return 1, true
	}

	weight, ok := w[label]
	return weight, ok
}

// Classes returns the sorted class identifiers of the mapping.
func (w Weights) Classes() []int {
	classes := maps.Keys(w)
	slices.Sort(classes)
	return classes
}

// Counts returns the number of samples of each label.
func Counts(labels []int) map[int]int {
	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}

	return counts
}

// Unique returns the sorted distinct labels.
func Unique(labels []int) []int {
	classes := maps.Keys(Counts(labels))
	slices.Sort(classes)
	return classes
}

// Uniform returns weight 1 for every class.
func Uniform(classes []int) Weights {
	weights := make(Weights, len(classes))
	for _, class := range classes {
		weights[class] = 1
	}

	return weights
}

// Balanced computes weight[c] = N / (K * N_c) for every class c, where N is
// the number of labels and K the number of classes. When classes is nil the
// distinct labels are used as the class set.
func Balanced(labels []int, classes []int) (Weights, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels are empty: %w", ErrInvalidInput)
	}

	if classes == nil {
		classes = Unique(labels)
	}

	if len(classes) == 0 {
		return nil, fmt.Errorf("classes are empty: %w", ErrInvalidInput)
	}

	counts := Counts(labels)
	weights := make(Weights, len(classes))
	for _, class := range classes {
		if _, ok := weights[class]; ok {
			return nil, fmt.Errorf("class %d is declared twice: %w", class, ErrInvalidInput)
		}

		count := counts[class]
		if count == 0 {
			return nil, fmt.Errorf("class %d has no samples: %w", class, ErrInvalidInput)
		}

		weights[class] = float64(len(labels)) / (float64(len(classes)) * float64(count))
	}

	for label := range counts {
		if _, ok := weights[label]; !ok {
			return nil, fmt.Errorf("label %d is not in classes: %w", label, ErrInvalidInput)
		}
	}

	return weights, nil
}

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
	"fmt"
	"math"
	"math/rand"
)

// Split shuffles the rows with a seeded permutation and returns disjoint
// train and test partitions, the test partition holding round(N*testPercent)
// rows. The same seed and input order always yield the same partitions.
func Split(set *SampleSet, testPercent float64, seed int64) (*SampleSet, *SampleSet, error) {
	if err := set.Validate(); err != nil {
		return nil, nil, err
	}

	// NaN fails both comparisons.
	if !(testPercent > 0 && testPercent < 1) {
		return nil, nil, fmt.Errorf("test percent %v must be in (0, 1)", testPercent)
	}

	total := set.Len()
	testCount := int(math.Round(float64(total) * testPercent))
	if testCount == 0 || testCount == total {
		return nil, nil, fmt.Errorf("can not split %d samples with test percent %v", total, testPercent)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(total)
	return set.subset(perm[testCount:]), set.subset(perm[:testCount]), nil
}

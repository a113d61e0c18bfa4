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
	"math"
	"math/rand"
)

const (
	// BuiltinNegativeCount is the number of malignant rows of the builtin set.
	BuiltinNegativeCount = 212

	// BuiltinPositiveCount is the number of benign rows of the builtin set.
	BuiltinPositiveCount = 357
)

// measurement describes one cell nucleus measurement by its class means.
type measurement struct {
	name      string
	malignant float64
	benign    float64
	stddev    float64
}

var measurements = []measurement{
	{"radius", 17.46, 12.15, 2.5},
	{"texture", 21.60, 17.91, 4.0},
	{"perimeter", 115.4, 78.08, 17.0},
	{"area", 978.4, 462.8, 260.0},
	{"smoothness", 0.1029, 0.0925, 0.0134},
	{"compactness", 0.1452, 0.0801, 0.0450},
	{"concavity", 0.1608, 0.0461, 0.0600},
	{"concave points", 0.0880, 0.0257, 0.0260},
	{"symmetry", 0.1929, 0.1742, 0.0265},
	{"fractal dimension", 0.0627, 0.0629, 0.0070},
}

// aggregates scale every measurement into the mean, standard error and
// worst value columns.
var aggregates = []struct {
	prefix    string
	suffix    string
	malignant float64
	benign    float64
}{
	{"mean ", "", 1, 1},
	{"", " error", 0.12, 0.08},
	{"worst ", "", 1.25, 1.12},
}

type builtinProvider struct {
	seed int64
}

// NewBuiltinProvider returns the in-memory diagnostic data set. The same
// seed always yields the same rows in the same order.
func NewBuiltinProvider(seed int64) Provider {
	return &builtinProvider{seed: seed}
}

// BuiltinFeatureNames returns the column names of the builtin set.
func BuiltinFeatureNames() []string {
	names := make([]string, 0, len(aggregates)*len(measurements))
	for _, a := range aggregates {
		for _, m := range measurements {
			names = append(names, a.prefix+m.name+a.suffix)
		}
	}

	return names
}

// Load generates the sample set.
func (p *builtinProvider) Load(ctx context.Context) (*SampleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.seed))
	total := BuiltinNegativeCount + BuiltinPositiveCount
	labels := make([]int, total)
	for i := BuiltinNegativeCount; i < total; i++ {
		labels[i] = PositiveLabel
	}
	rng.Shuffle(total, func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})

	set := &SampleSet{
		FeatureNames: BuiltinFeatureNames(),
		Features:     make([][]float64, total),
		Labels:       labels,
	}

	for i, label := range labels {
		// Severity moves the whole row at once, keeping the columns correlated.
		severity := rng.NormFloat64()
		row := make([]float64, 0, len(set.FeatureNames))
		for _, a := range aggregates {
			for _, m := range measurements {
				mean, scale := m.benign*a.benign, a.benign
				if label == NegativeLabel {
					mean, scale = m.malignant*a.malignant, a.malignant
				}

				noise := 0.6*severity + 0.8*rng.NormFloat64()
				row = append(row, math.Max(0, mean+noise*m.stddev*scale))
			}
		}

		set.Features[i] = row
	}

	return set, nil
}

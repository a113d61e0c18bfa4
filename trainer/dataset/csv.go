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
	"io"
	"math"
	"os"

	"github.com/sjwhitworth/golearn/base"
)

type csvProvider struct {
	path       string
	hasHeaders bool
}

// NewCSVProvider returns a provider reading a CSV file whose last column is
// the label and every other column a numeric feature.
func NewCSVProvider(path string, hasHeaders bool) Provider {
	return &csvProvider{
		path:       path,
		hasHeaders: hasHeaders,
	}
}

// Load parses the CSV file.
func (p *csvProvider) Load(ctx context.Context) (*SampleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file, p.hasHeaders)
}

// ReadCSV parses CSV content into a sample set.
func ReadCSV(r io.ReadSeeker, hasHeaders bool) (*SampleSet, error) {
	instances, err := base.ParseCSVToInstancesFromReader(r, hasHeaders)
	if err != nil {
		return nil, err
	}

	return FromInstances(instances)
}

// FromInstances converts a golearn grid with float features and a single
// class attribute into a sample set. Float class values are rounded to the
// nearest integer, categorical class values map to their ordinal.
func FromInstances(instances base.FixedDataGrid) (*SampleSet, error) {
	classAttrs := instances.AllClassAttributes()
	if len(classAttrs) != 1 {
		return nil, errors.New("only 1 class variable is permitted")
	}
	classSpecs := base.ResolveAttributes(instances, classAttrs)

	attrs := base.NonClassAttributes(instances)
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if _, ok := a.(*base.FloatAttribute); !ok {
			return nil, fmt.Errorf("feature %s is not numeric", a.GetName())
		}
		names = append(names, a.GetName())
	}
	attrSpecs := base.ResolveAttributes(instances, attrs)

	_, rows := instances.Size()
	set := &SampleSet{
		FeatureNames: names,
		Features:     make([][]float64, rows),
		Labels:       make([]int, rows),
	}

	for i := 0; i < rows; i++ {
		row := make([]float64, len(attrSpecs))
		for j, spec := range attrSpecs {
			row[j] = base.UnpackBytesToFloat(instances.Get(spec, i))
		}
		set.Features[i] = row

		raw := instances.Get(classSpecs[0], i)
		switch classAttrs[0].(type) {
		case *base.FloatAttribute:
			set.Labels[i] = int(math.Round(base.UnpackBytesToFloat(raw)))
		case *base.CategoricalAttribute:
			set.Labels[i] = int(base.UnpackBytesToU64(raw))
		default:
			return nil, fmt.Errorf("class %s is neither numeric nor categorical", classAttrs[0].GetName())
		}
	}

	return set, set.Validate()
}

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
	"strconv"

	"github.com/sjwhitworth/golearn/base"

	"d7y.io/imbalance/pkg/classweight"
)

// LabelAttributeName is the name of the class attribute of generated grids.
const LabelAttributeName = "label"

// Instances converts the sample set into a golearn grid with one float
// attribute per feature and a categorical class attribute. The class values
// are registered in the order of classes, then any other label in ascending
// order.
func Instances(set *SampleSet, classes []int) (*base.DenseInstances, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	instances := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(set.FeatureNames))
	for i, name := range set.FeatureNames {
		specs[i] = instances.AddAttribute(base.NewFloatAttribute(name))
	}

	label := base.NewCategoricalAttribute()
	label.SetName(LabelAttributeName)
	values := append(append([]int{}, classes...), classweight.Unique(set.Labels)...)
	for _, class := range values {
		label.GetSysValFromString(strconv.Itoa(class))
	}

	labelSpec := instances.AddAttribute(label)
	if err := instances.AddClassAttribute(label); err != nil {
		return nil, err
	}

	if err := instances.Extend(set.Len()); err != nil {
		return nil, err
	}

	for i, row := range set.Features {
		for j, x := range row {
			instances.Set(specs[j], i, base.PackFloatToBytes(x))
		}

		instances.Set(labelSpec, i, label.GetSysValFromString(strconv.Itoa(set.Labels[i])))
	}

	return instances, nil
}

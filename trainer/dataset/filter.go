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
)

// DropClassRows removes the first count rows labeled class and keeps every
// other row in its original order.
func DropClassRows(set *SampleSet, class, count int) (*SampleSet, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	if count < 0 {
		return nil, fmt.Errorf("drop count %d is negative", count)
	}

	if population := set.ClassCounts()[class]; count > population {
		return nil, fmt.Errorf("can not drop %d rows of class %d, only %d present", count, class, population)
	}

	retained := make([]int, 0, set.Len()-count)
	for i, label := range set.Labels {
		if label == class && count > 0 {
			count--
			continue
		}

		retained = append(retained, i)
	}

	return set.subset(retained), nil
}

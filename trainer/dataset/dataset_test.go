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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sjwhitworth/golearn/base"
	"github.com/stretchr/testify/assert"

	"d7y.io/imbalance/pkg/classweight"
)

// indexedSet returns a set whose single feature is the row index.
func indexedSet(labels ...int) *SampleSet {
	set := &SampleSet{FeatureNames: []string{"index"}, Labels: labels}
	for i := range labels {
		set.Features = append(set.Features, []float64{float64(i)})
	}

	return set
}

func TestSampleSet_Validate(t *testing.T) {
	tests := []struct {
		name   string
		set    *SampleSet
		expect func(t *testing.T, err error)
	}{
		{
			name: "valid set",
			set:  indexedSet(0, 1, 1),
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name: "more labels than rows",
			set: &SampleSet{
				FeatureNames: []string{"a"},
				Features:     [][]float64{{1}},
				Labels:       []int{0, 1},
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrShapeMismatch)
			},
		},
		{
			name: "ragged row",
			set: &SampleSet{
				FeatureNames: []string{"a", "b"},
				Features:     [][]float64{{1, 2}, {3}},
				Labels:       []int{0, 1},
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, ErrShapeMismatch)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, tc.set.Validate())
		})
	}
}

func TestBuiltinProvider_Load(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	set, err := NewBuiltinProvider(1).Load(ctx)
	assert.NoError(err)
	assert.NoError(set.Validate())
	assert.Equal(BuiltinNegativeCount+BuiltinPositiveCount, set.Len())
	assert.Len(set.FeatureNames, 30)
	assert.Equal("mean radius", set.FeatureNames[0])
	assert.Equal("radius error", set.FeatureNames[10])
	assert.Equal("worst fractal dimension", set.FeatureNames[29])
	assert.Equal(map[int]int{NegativeLabel: BuiltinNegativeCount, PositiveLabel: BuiltinPositiveCount}, set.ClassCounts())
	for _, row := range set.Features {
		for _, x := range row {
			assert.GreaterOrEqual(x, 0.0)
		}
	}

	again, err := NewBuiltinProvider(1).Load(ctx)
	assert.NoError(err)
	assert.Equal(set, again)

	other, err := NewBuiltinProvider(2).Load(ctx)
	assert.NoError(err)
	assert.NotEqual(set.Features, other.Features)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewBuiltinProvider(1).Load(cancelled)
	assert.ErrorIs(err, context.Canceled)
}

func TestDropClassRows(t *testing.T) {
	tests := []struct {
		name   string
		set    *SampleSet
		class  int
		count  int
		expect func(t *testing.T, set *SampleSet, err error)
	}{
		{
			name:  "drop first rows of a class",
			set:   indexedSet(1, 0, 0, 1, 0, 1),
			class: 0,
			count: 2,
			expect: func(t *testing.T, set *SampleSet, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]int{1, 1, 0, 1}, set.Labels)
				assert.Equal([][]float64{{0}, {3}, {4}, {5}}, set.Features)
			},
		},
		{
			name:  "drop nothing",
			set:   indexedSet(1, 0),
			class: 0,
			count: 0,
			expect: func(t *testing.T, set *SampleSet, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]int{1, 0}, set.Labels)
			},
		},
		{
			name:  "drop more than present",
			set:   indexedSet(1, 0),
			class: 0,
			count: 2,
			expect: func(t *testing.T, set *SampleSet, err error) {
				assert := assert.New(t)
				assert.Error(err)
			},
		},
		{
			name:  "negative count",
			set:   indexedSet(1, 0),
			class: 0,
			count: -1,
			expect: func(t *testing.T, set *SampleSet, err error) {
				assert := assert.New(t)
				assert.Error(err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			labels := append([]int{}, tc.set.Labels...)
			set, err := DropClassRows(tc.set, tc.class, tc.count)
			tc.expect(t, set, err)
			assert.Equal(t, labels, tc.set.Labels)
		})
	}
}

func TestDropClassRows_Builtin(t *testing.T) {
	assert := assert.New(t)
	set, err := NewBuiltinProvider(1).Load(context.Background())
	assert.NoError(err)

	imbalanced, err := DropClassRows(set, NegativeLabel, 104)
	assert.NoError(err)
	assert.Equal(map[int]int{NegativeLabel: 108, PositiveLabel: 357}, imbalanced.ClassCounts())

	weights, err := classweight.Balanced(imbalanced.Labels, classweight.Unique(imbalanced.Labels))
	assert.NoError(err)
	assert.InDelta(2.1528, weights[NegativeLabel], 1e-4)
	assert.InDelta(0.6513, weights[PositiveLabel], 1e-4)
}

func TestSplit(t *testing.T) {
	labels := make([]int, 100)
	for i := range labels {
		labels[i] = i % 4 / 3
	}
	set := indexedSet(labels...)

	tests := []struct {
		name        string
		testPercent float64
		seed        int64
		expect      func(t *testing.T, train, test *SampleSet, err error)
	}{
		{
			name:        "split twenty percent",
			testPercent: 0.2,
			seed:        42,
			expect: func(t *testing.T, train, test *SampleSet, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(80, train.Len())
				assert.Equal(20, test.Len())

				seen := make(map[int]bool)
				for _, part := range []*SampleSet{train, test} {
					for i, row := range part.Features {
						index := int(row[0])
						assert.False(seen[index])
						seen[index] = true
						assert.Equal(labels[index], part.Labels[i])
					}
				}
				assert.Len(seen, 100)

				again, againTest, err := Split(set, 0.2, 42)
				assert.NoError(err)
				assert.Equal(train, again)
				assert.Equal(test, againTest)
			},
		},
		{
			name:        "rounds the test count",
			testPercent: 0.333,
			seed:        7,
			expect: func(t *testing.T, train, test *SampleSet, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(33, test.Len())
				assert.Equal(67, train.Len())
			},
		},
		{
			name:        "test percent out of range",
			testPercent: 1,
			expect: func(t *testing.T, train, test *SampleSet, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Nil(train)
				assert.Nil(test)
			},
		},
		{
			name:        "test percent is NaN",
			testPercent: math.NaN(),
			expect: func(t *testing.T, train, test *SampleSet, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Nil(train)
				assert.Nil(test)
			},
		},
		{
			name:        "empty test partition",
			testPercent: 0.001,
			expect: func(t *testing.T, train, test *SampleSet, err error) {
				assert := assert.New(t)
				assert.Error(err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			train, test, err := Split(set, tc.testPercent, tc.seed)
			tc.expect(t, train, test, err)
		})
	}
}

func TestSplit_ShapeMismatch(t *testing.T) {
	set := &SampleSet{FeatureNames: []string{"a"}, Features: [][]float64{{1}}, Labels: []int{0, 1}}
	_, _, err := Split(set, 0.5, 1)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestInstances(t *testing.T) {
	assert := assert.New(t)
	set := &SampleSet{
		FeatureNames: []string{"a", "b"},
		Features:     [][]float64{{1.5, 2}, {3, 4.25}, {5, 6}},
		Labels:       []int{1, 0, 1},
	}

	instances, err := Instances(set, []int{0, 1})
	assert.NoError(err)

	cols, rows := instances.Size()
	assert.Equal(3, cols)
	assert.Equal(3, rows)
	assert.Equal("1", base.GetClass(instances, 0))
	assert.Equal("0", base.GetClass(instances, 1))

	back, err := FromInstances(instances)
	assert.NoError(err)
	assert.Equal(set.FeatureNames, back.FeatureNames)
	assert.Equal(set.Features, back.Features)
	assert.Equal(set.Labels, back.Labels)
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
		headers bool
		expect  func(t *testing.T, set *SampleSet, err error)
	}{
		{
			name:    "numeric label with headers",
			content: "x,y,label\n1.0,2.0,0\n3.0,4.0,1\n5.0,6.0,1\n",
			headers: true,
			expect: func(t *testing.T, set *SampleSet, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal([]string{"x", "y"}, set.FeatureNames)
				assert.Equal([]int{0, 1, 1}, set.Labels)
				assert.InDelta(3.0, set.Features[1][0], 1e-9)
				assert.InDelta(6.0, set.Features[2][1], 1e-9)
			},
		},
		{
			name:    "non numeric feature",
			content: "name,label\nfoo,0\nbar,1\n",
			headers: true,
			expect: func(t *testing.T, set *SampleSet, err error) {
				assert := assert.New(t)
				assert.Error(err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set, err := ReadCSV(strings.NewReader(tc.content), tc.headers)
			tc.expect(t, set, err)
		})
	}
}

func TestCSVProvider_Load(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "samples.csv")
	assert.NoError(os.WriteFile(path, []byte("a,label\n0.5,1\n1.5,0\n"), 0600))

	set, err := NewCSVProvider(path, true).Load(context.Background())
	assert.NoError(err)
	assert.Equal([]int{1, 0}, set.Labels)

	_, err = NewCSVProvider(filepath.Join(t.TempDir(), "missing.csv"), true).Load(context.Background())
	assert.Error(err)
}

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

package training

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"d7y.io/imbalance/pkg/classweight"
	"d7y.io/imbalance/pkg/types"
	"d7y.io/imbalance/trainer/dataset"
	"d7y.io/imbalance/trainer/evaluation"
	"d7y.io/imbalance/trainer/models"
	"d7y.io/imbalance/trainer/storage"
)

// Report is the outcome of one experiment run.
type Report struct {
	// RunID identifies the run in logs and storage.
	RunID string

	// Dataset is the dataset source.
	Dataset string

	// Samples is the number of loaded rows.
	Samples int

	// Counts are the class counts after filtering.
	Counts map[int]int

	// TrainCounts are the class counts of the train partition.
	TrainCounts map[int]int

	// Epochs is the number of training epochs of each model.
	Epochs int

	// TrainSamples is the size of the train partition.
	TrainSamples int

	// TestSamples is the size of the test partition.
	TestSamples int

	// Classes is the sorted class set of the train partition.
	Classes []int

	// Weights are the balanced class weights of the train partition.
	Weights classweight.Weights

	// Results holds the uniform result then the weighted result.
	Results []*Result

	// CreatedAt is the start time of the run.
	CreatedAt time.Time
}

// Result is the evaluation of one trained model.
type Result struct {
	// ModelType is uniform or weighted.
	ModelType types.ModelType

	// Weights the model was trained with.
	Weights classweight.Weights

	// Eval on the test partition.
	Eval *evaluation.Eval

	model *models.MLP
}

// Print writes the plain text report.
func (r *Report) Print(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run: %s\n", r.RunID)
	fmt.Fprintf(&b, "dataset: %s, samples: %d\n", r.Dataset, r.Samples)
	fmt.Fprintf(&b, "class counts: %s\n", formatCounts(r.Counts))
	fmt.Fprintf(&b, "train samples: %d (%s), test samples: %d\n", r.TrainSamples, formatCounts(r.TrainCounts), r.TestSamples)
	fmt.Fprintf(&b, "class weights: %s\n", formatWeights(r.Weights))

	for i, result := range r.Results {
		if i == 0 {
			fmt.Fprintf(&b, "actual positive rate: %.4f\n", result.Eval.ActualPositiveRate)
		}

		fmt.Fprintf(&b, "%s: positive prediction rate %.4f, accuracy %.4f\n", result.ModelType.Name(), result.Eval.PositiveRate, result.Eval.Accuracy)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Result returns the result of the model type, nil when it was not trained.
func (r *Report) Result(modelType types.ModelType) *Result {
	for _, result := range r.Results {
		if result != nil && result.ModelType == modelType {
			return result
		}
	}

	return nil
}

// Records returns one storage record per result.
func (r *Report) Records() []storage.Record {
	records := make([]storage.Record, 0, len(r.Results))
	for _, result := range r.Results {
		negative, _ := result.Weights.Of(dataset.NegativeLabel)
		positive, _ := result.Weights.Of(dataset.PositiveLabel)
		records = append(records, storage.Record{
			RunID:              r.RunID,
			Model:              result.ModelType.Name(),
			Dataset:            r.Dataset,
			Epochs:             r.Epochs,
			TrainSamples:       r.TrainSamples,
			TestSamples:        r.TestSamples,
			NegativeWeight:     negative,
			PositiveWeight:     positive,
			Accuracy:           result.Eval.Accuracy,
			PositiveRate:       result.Eval.PositiveRate,
			ActualPositiveRate: result.Eval.ActualPositiveRate,
			CreatedAt:          r.CreatedAt.UnixNano(),
		})
	}

	return records
}

func formatCounts(counts map[int]int) string {
	classes := maps.Keys(counts)
	slices.Sort(classes)

	parts := make([]string, len(classes))
	for i, class := range classes {
		parts[i] = fmt.Sprintf("%d=%d", class, counts[class])
	}

	return strings.Join(parts, " ")
}

func formatWeights(weights classweight.Weights) string {
	classes := weights.Classes()
	parts := make([]string, len(classes))
	for i, class := range classes {
		parts[i] = fmt.Sprintf("%d=%.4f", class, weights[class])
	}

	return strings.Join(parts, " ")
}

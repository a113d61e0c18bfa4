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

package evaluation

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/sjwhitworth/golearn/base"
	golearn "github.com/sjwhitworth/golearn/evaluation"

	"d7y.io/imbalance/trainer/dataset"
	"d7y.io/imbalance/trainer/models"
)

// Eval is the evaluation of one model on the test partition.
type Eval struct {
	// Samples is the size of the test partition.
	Samples int

	// Accuracy is the fraction of correct predictions.
	Accuracy float64

	// PositiveRate is the fraction of predictions equal to the positive label.
	PositiveRate float64

	// ActualPositiveRate is the fraction of test labels equal to the positive label.
	ActualPositiveRate float64

	// MeanProbability is the mean predicted positive probability.
	MeanProbability float64

	// Precision of each class, 0 when the class is never predicted.
	Precision map[int]float64

	// Recall of each class, 0 when the class never occurs.
	Recall map[int]float64

	// ConfusionMatrix maps actual label to predicted label to count.
	ConfusionMatrix golearn.ConfusionMatrix
}

// Evaluate thresholds proba and compares the predictions with the labels of test.
func Evaluate(test *dataset.SampleSet, proba []float64, threshold float64) (*Eval, error) {
	if err := test.Validate(); err != nil {
		return nil, err
	}

	if test.Len() == 0 {
		return nil, errors.New("can not evaluate on empty set")
	}

	if len(proba) != test.Len() {
		return nil, fmt.Errorf("%d predictions for %d samples: %w", len(proba), test.Len(), dataset.ErrShapeMismatch)
	}

	predictions := models.Threshold(proba, threshold)
	classes := []int{dataset.NegativeLabel, dataset.PositiveLabel}
	ref, err := dataset.Instances(test, classes)
	if err != nil {
		return nil, err
	}

	gen, err := predictionVector(ref, predictions)
	if err != nil {
		return nil, err
	}

	cm, err := golearn.GetConfusionMatrix(ref, gen)
	if err != nil {
		return nil, err
	}

	meanProbability, err := stats.Mean(proba)
	if err != nil {
		return nil, err
	}

	eval := &Eval{
		Samples:            test.Len(),
		Accuracy:           golearn.GetAccuracy(cm),
		PositiveRate:       positiveRate(predictions),
		ActualPositiveRate: test.PositiveRate(dataset.PositiveLabel),
		MeanProbability:    meanProbability,
		Precision:          make(map[int]float64, len(classes)),
		Recall:             make(map[int]float64, len(classes)),
		ConfusionMatrix:    cm,
	}

	for _, class := range classes {
		value := strconv.Itoa(class)
		eval.Precision[class] = zeroNaN(golearn.GetPrecision(value, cm))
		eval.Recall[class] = zeroNaN(golearn.GetRecall(value, cm))
	}

	return eval, nil
}

// Summary returns the golearn summary table of the confusion matrix.
func (e *Eval) Summary() string {
	return golearn.GetSummary(e.ConfusionMatrix)
}

// predictionVector writes predictions into a grid sharing the class attribute of ref.
func predictionVector(ref base.FixedDataGrid, predictions []int) (base.FixedDataGrid, error) {
	gen := base.GeneratePredictionVector(ref)
	attrs := gen.AllClassAttributes()
	if len(attrs) != 1 {
		return nil, errors.New("only 1 class variable is permitted")
	}

	label, ok := attrs[0].(*base.CategoricalAttribute)
	if !ok {
		return nil, errors.New("class attribute is not categorical")
	}

	spec, err := gen.GetAttribute(label)
	if err != nil {
		return nil, err
	}

	for i, prediction := range predictions {
		gen.Set(spec, i, label.GetSysValFromString(strconv.Itoa(prediction)))
	}

	return gen, nil
}

func positiveRate(predictions []int) float64 {
	var positives int
	for _, prediction := range predictions {
		if prediction == dataset.PositiveLabel {
			positives++
		}
	}

	return float64(positives) / float64(len(predictions))
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return v
}

// CheckEval rejects evaluations with undefined metrics.
func CheckEval(eval *Eval) error {
	for name, v := range map[string]float64{
		"accuracy":         eval.Accuracy,
		"positive rate":    eval.PositiveRate,
		"mean probability": eval.MeanProbability,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is %v", name, v)
		}
	}

	return nil
}

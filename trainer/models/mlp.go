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

package models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	logger "d7y.io/imbalance/internal/dflog"
	"d7y.io/imbalance/pkg/classweight"
	"d7y.io/imbalance/trainer/dataset"
)

const (
	// Adam exponential decay of the first moment.
	adamBeta1 = 0.9

	// Adam exponential decay of the second moment.
	adamBeta2 = 0.999

	// Adam denominator epsilon.
	adamEpsilon = 1e-7

	// Probabilities are clipped by this epsilon before taking logarithms.
	lossEpsilon = 1e-7
)

var (
	// ErrNotFitted is returned when predicting with an untrained model.
	ErrNotFitted = errors.New("no fitted model")

	// ErrMissingClassWeight is returned when a training label has no weight.
	ErrMissingClassWeight = errors.New("missing class weight")
)

// FitOptions configures one training run.
type FitOptions struct {
	// Epochs is the number of passes over the training set.
	Epochs int

	// BatchSize is the number of samples per gradient update.
	BatchSize int

	// LearningRate of the Adam optimizer.
	LearningRate float64

	// Seed drives weight initialization and batch shuffling.
	Seed int64

	// ClassWeights multiplies the loss of every sample by the weight of its
	// label. Nil weighs all samples equally.
	ClassWeights classweight.Weights

	// OnEpoch is called after every epoch with the mean weighted loss.
	OnEpoch func(epoch int, loss float64)
}

// Validate fit options.
func (o *FitOptions) Validate() error {
	if o.Epochs <= 0 {
		return errors.New("fit requires parameter epochs")
	}

	if o.BatchSize <= 0 {
		return errors.New("fit requires parameter batchSize")
	}

	if o.LearningRate <= 0 {
		return errors.New("fit requires parameter learningRate")
	}

	return nil
}

// dense is one fully connected layer, y = x*W + b.
type dense struct {
	weights *mat.Dense
	biases  []float64
}

// adam holds the optimizer moments of one layer.
type adam struct {
	mw, vw *mat.Dense
	mb, vb []float64
}

// MLP is a feed-forward binary classifier with ReLU hidden layers and a
// single sigmoid output.
type MLP struct {
	Fitted bool
	Inputs int
	Hidden []int

	layers []*dense
}

// NewMLP returns an untrained network for inputs features.
func NewMLP(inputs int, hidden []int) (*MLP, error) {
	if inputs <= 0 {
		return nil, errors.New("network requires at least one input")
	}

	for _, units := range hidden {
		if units <= 0 {
			return nil, fmt.Errorf("hidden layer size %d must be positive", units)
		}
	}

	return &MLP{
		Inputs: inputs,
		Hidden: append([]int{}, hidden...),
	}, nil
}

// sizes returns the width of every layer boundary, input to output.
func (m *MLP) sizes() []int {
	sizes := append([]int{m.Inputs}, m.Hidden...)
	return append(sizes, 1)
}

// initialize draws Glorot uniform weights and zero biases.
func (m *MLP) initialize(rng *rand.Rand) {
	sizes := m.sizes()
	m.layers = make([]*dense, len(sizes)-1)
	for l := range m.layers {
		in, out := sizes[l], sizes[l+1]
		limit := math.Sqrt(6 / float64(in+out))
		data := make([]float64, in*out)
		for i := range data {
			data[i] = (rng.Float64()*2 - 1) * limit
		}

		m.layers[l] = &dense{
			weights: mat.NewDense(in, out, data),
			biases:  make([]float64, out),
		}
	}
}

// forward returns the pre-activations and activations of every layer; the
// first activation is x itself and the last is the sigmoid output.
func (m *MLP) forward(x *mat.Dense) ([]*mat.Dense, []*mat.Dense) {
	rows, _ := x.Dims()
	zs := make([]*mat.Dense, len(m.layers))
	as := make([]*mat.Dense, len(m.layers)+1)
	as[0] = x

	for l, layer := range m.layers {
		_, out := layer.weights.Dims()
		z := mat.NewDense(rows, out, nil)
		z.Mul(as[l], layer.weights)
		z.Apply(func(_, j int, v float64) float64 {
			return v + layer.biases[j]
		}, z)
		zs[l] = z

		a := mat.NewDense(rows, out, nil)
		if l == len(m.layers)-1 {
			a.Apply(func(_, _ int, v float64) float64 {
				return sigmoid(v)
			}, z)
		} else {
			a.Apply(func(_, _ int, v float64) float64 {
				return math.Max(0, v)
			}, z)
		}
		as[l+1] = a
	}

	return zs, as
}

// Fit trains the network on set. Weights are re-initialized from the seed
// on every call.
func (m *MLP) Fit(ctx context.Context, set *dataset.SampleSet, opts FitOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	if err := set.Validate(); err != nil {
		return err
	}

	if len(set.FeatureNames) != m.Inputs {
		return fmt.Errorf("network has %d inputs, set has %d features: %w", m.Inputs, len(set.FeatureNames), dataset.ErrShapeMismatch)
	}

	if set.Len() == 0 {
		return errors.New("can not fit on empty set")
	}

	sampleWeights := make([]float64, set.Len())
	for i, label := range set.Labels {
		weight, ok := opts.ClassWeights.Of(label)
		if !ok {
			return fmt.Errorf("label %d: %w", label, ErrMissingClassWeight)
		}
		sampleWeights[i] = weight
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	m.initialize(rng)
	m.Fitted = false

	moments := make([]*adam, len(m.layers))
	for l, layer := range m.layers {
		in, out := layer.weights.Dims()
		moments[l] = &adam{
			mw: mat.NewDense(in, out, nil),
			vw: mat.NewDense(in, out, nil),
			mb: make([]float64, out),
			vb: make([]float64, out),
		}
	}

	var step int
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		order := rng.Perm(set.Len())
		var epochLoss float64
		for start := 0; start < len(order); start += opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return err
			}

			end := start + opts.BatchSize
			if end > len(order) {
				end = len(order)
			}

			step++
			epochLoss += m.update(set, sampleWeights, order[start:end], moments, step, opts.LearningRate)
		}

		epochLoss /= float64(set.Len())
		if math.IsNaN(epochLoss) {
			return errors.New("model NAN")
		}

		if opts.OnEpoch != nil {
			opts.OnEpoch(epoch, epochLoss)
		}
	}

	m.Fitted = true
	logger.Debugf("fitted network %v on %d samples for %d epochs", m.sizes(), set.Len(), opts.Epochs)
	return nil
}

// update runs one Adam step on the batch and returns the summed weighted
// loss of the batch.
func (m *MLP) update(set *dataset.SampleSet, sampleWeights []float64, batch []int, moments []*adam, step int, learningRate float64) float64 {
	size := len(batch)
	x := mat.NewDense(size, m.Inputs, nil)
	for i, index := range batch {
		x.SetRow(i, set.Features[index])
	}

	zs, as := m.forward(x)
	output := as[len(as)-1]

	// Gradient of mean(w * BCE(p, y)) with respect to the output logits.
	var loss float64
	delta := mat.NewDense(size, 1, nil)
	for i, index := range batch {
		p := output.At(i, 0)
		y := float64(set.Labels[index])
		w := sampleWeights[index]
		loss += w * crossEntropy(p, y)
		delta.Set(i, 0, w*(p-y)/float64(size))
	}

	correction1 := 1 - math.Pow(adamBeta1, float64(step))
	correction2 := 1 - math.Pow(adamBeta2, float64(step))
	for l := len(m.layers) - 1; l >= 0; l-- {
		layer := m.layers[l]
		in, out := layer.weights.Dims()

		gradW := mat.NewDense(in, out, nil)
		gradW.Mul(as[l].T(), delta)
		gradB := make([]float64, out)
		for i := 0; i < size; i++ {
			for j := 0; j < out; j++ {
				gradB[j] += delta.At(i, j)
			}
		}

		if l > 0 {
			previous := mat.NewDense(size, in, nil)
			previous.Mul(delta, layer.weights.T())
			z := zs[l-1]
			previous.Apply(func(i, j int, v float64) float64 {
				if z.At(i, j) <= 0 {
					return 0
				}
				return v
			}, previous)
			delta = previous
		}

		moment := moments[l]
		for i := 0; i < in; i++ {
			for j := 0; j < out; j++ {
				g := gradW.At(i, j)
				mw := adamBeta1*moment.mw.At(i, j) + (1-adamBeta1)*g
				vw := adamBeta2*moment.vw.At(i, j) + (1-adamBeta2)*g*g
				moment.mw.Set(i, j, mw)
				moment.vw.Set(i, j, vw)
				layer.weights.Set(i, j, layer.weights.At(i, j)-learningRate*(mw/correction1)/(math.Sqrt(vw/correction2)+adamEpsilon))
			}
		}

		for j := 0; j < out; j++ {
			g := gradB[j]
			moment.mb[j] = adamBeta1*moment.mb[j] + (1-adamBeta1)*g
			moment.vb[j] = adamBeta2*moment.vb[j] + (1-adamBeta2)*g*g
			layer.biases[j] -= learningRate * (moment.mb[j] / correction1) / (math.Sqrt(moment.vb[j]/correction2) + adamEpsilon)
		}
	}

	return loss
}

// PredictProba returns the positive class probability of every row.
func (m *MLP) PredictProba(features [][]float64) ([]float64, error) {
	if !m.Fitted {
		logger.Info("no fitted model")
		return nil, ErrNotFitted
	}

	if len(features) == 0 {
		return []float64{}, nil
	}

	x := mat.NewDense(len(features), m.Inputs, nil)
	for i, row := range features {
		if len(row) != m.Inputs {
			return nil, fmt.Errorf("row %d has %d features, network has %d inputs: %w", i, len(row), m.Inputs, dataset.ErrShapeMismatch)
		}
		x.SetRow(i, row)
	}

	_, as := m.forward(x)
	output := as[len(as)-1]
	proba := make([]float64, len(features))
	for i := range proba {
		proba[i] = output.At(i, 0)
	}

	return proba, nil
}

// Predict returns the positive label for every row whose probability
// reaches threshold and the negative label otherwise.
func (m *MLP) Predict(features [][]float64, threshold float64) ([]int, error) {
	proba, err := m.PredictProba(features)
	if err != nil {
		return nil, err
	}

	return Threshold(proba, threshold), nil
}

// Threshold turns probabilities into labels.
func Threshold(proba []float64, threshold float64) []int {
	labels := make([]int, len(proba))
	for i, p := range proba {
		if p >= threshold {
			labels[i] = dataset.PositiveLabel
		} else {
			labels[i] = dataset.NegativeLabel
		}
	}

	return labels
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func crossEntropy(p, y float64) float64 {
	p = math.Min(math.Max(p, lossEpsilon), 1-lossEpsilon)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

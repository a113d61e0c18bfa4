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

//go:generate mockgen -destination mocks/training_mock.go -source training.go -package mocks

package training

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	logger "d7y.io/imbalance/internal/dflog"
	"d7y.io/imbalance/pkg/classweight"
	"d7y.io/imbalance/pkg/types"
	"d7y.io/imbalance/trainer/config"
	"d7y.io/imbalance/trainer/dataset"
	"d7y.io/imbalance/trainer/evaluation"
	"d7y.io/imbalance/trainer/metrics"
	"d7y.io/imbalance/trainer/models"
	"d7y.io/imbalance/trainer/preprocess"
	"d7y.io/imbalance/trainer/storage"
)

// Training defines the interface to run the class weighting experiment.
type Training interface {
	// Train loads, filters and splits the dataset, then trains and evaluates
	// the uniform and the weighted model.
	Train(context.Context) (*Report, error)

	// ComputeWeights runs the pipeline up to the class weight step.
	ComputeWeights(context.Context) (*Report, error)
}

// training implements Training interface.
type training struct {
	// Experiment config.
	config *config.Config

	// Dataset provider.
	provider dataset.Provider

	// Storage interface, nil disables persistence.
	storage storage.Storage

	// Progress output of the epochs, nil disables progress bars.
	progress io.Writer
}

// Option is a functional option for configuring the training.
type Option func(t *training)

// WithStorage persists reports and models.
func WithStorage(s storage.Storage) Option {
	return func(t *training) {
		t.storage = s
	}
}

// WithProgress renders one epoch progress bar per model into w. Writes are
// serialized, concurrent fits share w.
func WithProgress(w io.Writer) Option {
	return func(t *training) {
		t.progress = &lockedWriter{w: w}
	}
}

// lockedWriter serializes writes of the progress bars.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

// New returns a new Training.
func New(cfg *config.Config, provider dataset.Provider, options ...Option) Training {
	t := &training{
		config:   cfg,
		provider: provider,
	}

	for _, opt := range options {
		opt(t)
	}

	return t
}

// partition is the prepared input of both fits.
type partition struct {
	report *Report
	train  *dataset.SampleSet
	test   *dataset.SampleSet
}

// Train begins the experiment.
func (t *training) Train(ctx context.Context) (*Report, error) {
	metrics.RunCount.Inc()

	p, err := t.prepare(ctx)
	if err != nil {
		metrics.RunFailureCount.Inc()
		return nil, err
	}

	if err := t.run(ctx, p); err != nil {
		metrics.RunFailureCount.Inc()
		return nil, err
	}

	if err := t.persist(p.report); err != nil {
		metrics.RunFailureCount.Inc()
		return nil, err
	}

	return p.report, nil
}

// ComputeWeights runs the pipeline up to the class weight step.
func (t *training) ComputeWeights(ctx context.Context) (*Report, error) {
	p, err := t.prepare(ctx)
	if err != nil {
		return nil, err
	}

	return p.report, nil
}

// prepare loads, filters, splits and standardizes the dataset and computes
// the balanced class weights of the train partition.
func (t *training) prepare(ctx context.Context) (*partition, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Dataset:   t.config.Dataset.Source,
		Epochs:    t.config.Training.Epochs,
		CreatedAt: time.Now(),
	}
	log := logger.WithRun(report.RunID)

	set, err := t.provider.Load(ctx)
	if err != nil {
		log.Errorf("load dataset failed: %s", err.Error())
		return nil, err
	}
	report.Samples = set.Len()
	log.Infof("loaded %d samples with counts %v", set.Len(), set.ClassCounts())

	if t.config.Imbalance.Enable {
		set, err = dataset.DropClassRows(set, t.config.Imbalance.Class, t.config.Imbalance.Drop)
		if err != nil {
			log.Errorf("drop rows failed: %s", err.Error())
			return nil, err
		}
		log.Infof("dropped %d rows of class %d", t.config.Imbalance.Drop, t.config.Imbalance.Class)
	}
	report.Counts = set.ClassCounts()

	train, test, err := dataset.Split(set, t.config.Split.TestPercent, t.config.Split.Seed)
	if err != nil {
		log.Errorf("split dataset failed: %s", err.Error())
		return nil, err
	}

	if t.config.Training.Standardize {
		scaler, err := preprocess.FitStandardScaler(train)
		if err != nil {
			return nil, err
		}

		if train, err = scaler.Transform(train); err != nil {
			return nil, err
		}

		if test, err = scaler.Transform(test); err != nil {
			return nil, err
		}
	}

	report.TrainSamples = train.Len()
	report.TestSamples = test.Len()
	report.TrainCounts = train.ClassCounts()

	// The class set is taken from the train partition only.
	report.Classes = classweight.Unique(train.Labels)
	report.Weights, err = classweight.Balanced(train.Labels, report.Classes)
	if err != nil {
		log.Errorf("compute class weights failed: %s", err.Error())
		return nil, err
	}

	for _, class := range report.Classes {
		metrics.ClassWeightGauge.WithLabelValues(strconv.Itoa(class)).Set(report.Weights[class])
	}
	log.Infof("class weights %v", report.Weights)

	return &partition{
		report: report,
		train:  train,
		test:   test,
	}, nil
}

// run fits and evaluates the uniform and the weighted model. The fits share
// nothing but the read only partitions.
func (t *training) run(ctx context.Context, p *partition) error {
	weights := []classweight.Weights{
		types.ModelTypeUniform:  classweight.Uniform(p.report.Classes),
		types.ModelTypeWeighted: p.report.Weights,
	}
	results := make([]*Result, len(weights))

	fit := func(ctx context.Context, modelType types.ModelType) error {
		result, err := t.fit(ctx, p, modelType, weights[modelType])
		if err != nil {
			return err
		}

		results[modelType] = result
		return nil
	}

	if t.config.Training.Concurrent {
		eg, ctx := errgroup.WithContext(ctx)
		for _, modelType := range []types.ModelType{types.ModelTypeUniform, types.ModelTypeWeighted} {
			modelType := modelType
			eg.Go(func() error {
				return fit(ctx, modelType)
			})
		}

		// Wait for all train tasks to complete.
		if err := eg.Wait(); err != nil {
			logger.WithRun(p.report.RunID).Errorf("training failed: %v", err)
			return err
		}
	} else {
		for _, modelType := range []types.ModelType{types.ModelTypeUniform, types.ModelTypeWeighted} {
			if err := fit(ctx, modelType); err != nil {
				logger.WithRun(p.report.RunID).Errorf("training failed: %v", err)
				return err
			}
		}
	}

	p.report.Results = results
	return nil
}

// fit trains one model on the train partition and evaluates it on the test partition.
func (t *training) fit(ctx context.Context, p *partition, modelType types.ModelType, weights classweight.Weights) (*Result, error) {
	name := modelType.Name()
	log := logger.WithModel(p.report.RunID, name)
	metrics.TrainStartedCount.WithLabelValues(name).Inc()

	model, err := models.NewMLP(len(p.train.FeatureNames), t.config.Training.HiddenLayers)
	if err != nil {
		metrics.TrainFinishedFailureCount.WithLabelValues(name).Inc()
		return nil, err
	}

	bar := t.progressBar(name)
	opts := models.FitOptions{
		Epochs:       t.config.Training.Epochs,
		BatchSize:    t.config.Training.BatchSize,
		LearningRate: t.config.Training.LearningRate,
		Seed:         t.config.Training.Seed,
		ClassWeights: weights,
		OnEpoch: func(epoch int, loss float64) {
			log.Epochf("epoch %d/%d loss %.6f", epoch, t.config.Training.Epochs, loss)
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	}

	if err := model.Fit(ctx, p.train, opts); err != nil {
		log.Errorf("fit failed: %s", err.Error())
		metrics.TrainFinishedFailureCount.WithLabelValues(name).Inc()
		return nil, err
	}
	metrics.TrainFinishedCount.WithLabelValues(name).Inc()

	if bar != nil {
		_ = bar.Finish()
	}

	metrics.EvaluateCount.WithLabelValues(name).Inc()
	eval, err := t.evaluate(model, p.test)
	if err != nil {
		log.Errorf("evaluate failed: %s", err.Error())
		metrics.EvaluateFailureCount.WithLabelValues(name).Inc()
		return nil, err
	}

	metrics.AccuracyGauge.WithLabelValues(name).Set(eval.Accuracy)
	metrics.PositiveRateGauge.WithLabelValues(name).Set(eval.PositiveRate)
	log.Infof("accuracy %.4f positive rate %.4f", eval.Accuracy, eval.PositiveRate)

	return &Result{
		ModelType: modelType,
		Weights:   weights,
		Eval:      eval,
		model:     model,
	}, nil
}

func (t *training) evaluate(model *models.MLP, test *dataset.SampleSet) (*evaluation.Eval, error) {
	proba, err := model.PredictProba(test.Features)
	if err != nil {
		return nil, err
	}

	eval, err := evaluation.Evaluate(test, proba, t.config.Training.Threshold)
	if err != nil {
		return nil, err
	}

	if err := evaluation.CheckEval(eval); err != nil {
		return nil, err
	}

	return eval, nil
}

func (t *training) progressBar(name string) *progressbar.ProgressBar {
	if t.progress == nil {
		return nil
	}

	return progressbar.NewOptions(t.config.Training.Epochs,
		progressbar.OptionSetWriter(t.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("training %s", name)),
		progressbar.OptionShowCount(),
	)
}

// persist writes the report records and the model snapshots.
func (t *training) persist(report *Report) error {
	if t.storage == nil {
		return nil
	}

	if err := t.storage.CreateReport(report.Records()...); err != nil {
		logger.WithRun(report.RunID).Errorf("create report failed: %s", err.Error())
		return err
	}

	for _, result := range report.Results {
		data, err := json.Marshal(result.model)
		if err != nil {
			return err
		}

		if err := t.storage.SaveModel(report.RunID, result.ModelType.Name(), data); err != nil {
			logger.WithRun(report.RunID).Errorf("save model failed: %s", err.Error())
			return err
		}
	}

	return nil
}

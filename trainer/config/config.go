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

package config

import (
	"errors"
	"strings"

	"golang.org/x/exp/slices"

	"d7y.io/imbalance/cmd/dependency/base"
	"d7y.io/imbalance/pkg/types"
)

type Config struct {
	// Base options.
	base.Options `yaml:",inline" mapstructure:",squash"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Dataset configuration.
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`

	// Imbalance configuration.
	Imbalance ImbalanceConfig `yaml:"imbalance" mapstructure:"imbalance"`

	// Split configuration.
	Split SplitConfig `yaml:"split" mapstructure:"split"`

	// Training configuration.
	Training TrainingConfig `yaml:"training" mapstructure:"training"`

	// Storage configuration.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

type ServerConfig struct {
	// Server log directory.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// Maximum size in megabytes of log files before rotation (default: 40)
	LogMaxSize int `yaml:"logMaxSize" mapstructure:"logMaxSize"`

	// Maximum number of days to retain old log files (default: 7)
	LogMaxAge int `yaml:"logMaxAge" mapstructure:"logMaxAge"`

	// Maximum number of old log files to keep (default: 20)
	LogMaxBackups int `yaml:"logMaxBackups" mapstructure:"logMaxBackups"`

	// Server storage data directory.
	DataDir string `yaml:"dataDir" mapstructure:"dataDir"`
}

type DatasetConfig struct {
	// Source is builtin or csv.
	Source string `yaml:"source" mapstructure:"source"`

	// Path of the csv file, the last column is the integer label.
	Path string `yaml:"path" mapstructure:"path"`

	// HasHeaders indicates the first csv row holds column names.
	HasHeaders bool `yaml:"hasHeaders" mapstructure:"hasHeaders"`

	// Seed of the builtin dataset.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type ImbalanceConfig struct {
	// Enable dropping rows before the split.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Class whose rows are dropped.
	Class int `yaml:"class" mapstructure:"class"`

	// Drop is the number of leading rows of class removed.
	Drop int `yaml:"drop" mapstructure:"drop"`
}

type SplitConfig struct {
	// TestPercent is the fraction of rows in the test partition.
	TestPercent float64 `yaml:"testPercent" mapstructure:"testPercent"`

	// Seed of the split permutation.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type TrainingConfig struct {
	// Epochs is the number of passes over the train partition.
	Epochs int `yaml:"epochs" mapstructure:"epochs"`

	// BatchSize is the number of samples per gradient update.
	BatchSize int `yaml:"batchSize" mapstructure:"batchSize"`

	// LearningRate of the optimizer.
	LearningRate float64 `yaml:"learningRate" mapstructure:"learningRate"`

	// HiddenLayers are the unit counts of the hidden layers.
	HiddenLayers []int `yaml:"hiddenLayers" mapstructure:"hiddenLayers"`

	// Threshold is the probability at which the positive label is predicted.
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`

	// Seed of weight initialization and shuffling, shared by both models.
	Seed int64 `yaml:"seed" mapstructure:"seed"`

	// Standardize features with statistics of the train partition.
	Standardize bool `yaml:"standardize" mapstructure:"standardize"`

	// Concurrent trains the uniform and weighted models in parallel.
	Concurrent bool `yaml:"concurrent" mapstructure:"concurrent"`
}

type StorageConfig struct {
	// Enable writing reports and models to the data directory.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// ClearOnExit removes reports and models when the server stops.
	ClearOnExit bool `yaml:"clearOnExit" mapstructure:"clearOnExit"`
}

type MetricsConfig struct {
	// Enable metrics service.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Metrics service address.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			LogMaxSize:    DefaultLogRotateMaxSize,
			LogMaxAge:     DefaultLogRotateMaxAge,
			LogMaxBackups: DefaultLogRotateMaxBackups,
		},
		Dataset: DatasetConfig{
			Source: types.DatasetSourceBuiltin,
			Seed:   DefaultDatasetSeed,
		},
		Imbalance: ImbalanceConfig{
			Enable: true,
			Class:  DefaultImbalanceClass,
			Drop:   DefaultImbalanceDrop,
		},
		Split: SplitConfig{
			TestPercent: DefaultSplitTestPercent,
			Seed:        DefaultSplitSeed,
		},
		Training: TrainingConfig{
			Epochs:       DefaultTrainingEpochs,
			BatchSize:    DefaultTrainingBatchSize,
			LearningRate: DefaultTrainingLearningRate,
			HiddenLayers: append([]int{}, DefaultTrainingHiddenLayers...),
			Threshold:    DefaultTrainingThreshold,
			Seed:         DefaultTrainingSeed,
			Standardize:  true,
		},
		Storage: StorageConfig{
			Enable: true,
		},
		Metrics: MetricsConfig{
			Enable: false,
			Addr:   DefaultMetricsAddr,
		},
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if !slices.Contains([]string{types.DatasetSourceBuiltin, types.DatasetSourceCSV}, cfg.Dataset.Source) {
		return errors.New("dataset requires parameter source")
	}

	if cfg.Dataset.Source == types.DatasetSourceCSV && cfg.Dataset.Path == "" {
		return errors.New("dataset requires parameter path")
	}

	if cfg.Imbalance.Enable && cfg.Imbalance.Drop < 0 {
		return errors.New("imbalance requires parameter drop")
	}

	if !(cfg.Split.TestPercent > 0 && cfg.Split.TestPercent < 1) {
		return errors.New("split requires parameter testPercent")
	}

	if cfg.Training.Epochs <= 0 {
		return errors.New("training requires parameter epochs")
	}

	if cfg.Training.BatchSize <= 0 {
		return errors.New("training requires parameter batchSize")
	}

	if !(cfg.Training.LearningRate > 0) {
		return errors.New("training requires parameter learningRate")
	}

	for _, units := range cfg.Training.HiddenLayers {
		if units <= 0 {
			return errors.New("training requires parameter hiddenLayers")
		}
	}

	if !(cfg.Training.Threshold > 0 && cfg.Training.Threshold < 1) {
		return errors.New("training requires parameter threshold")
	}

	if cfg.Metrics.Enable {
		if cfg.Metrics.Addr == "" {
			return errors.New("metrics requires parameter addr")
		}
	}

	return nil
}

func (cfg *Config) Convert() error {
	cfg.Dataset.Source = strings.ToLower(strings.TrimSpace(cfg.Dataset.Source))
	if cfg.Dataset.Source == "" {
		if cfg.Dataset.Path != "" {
			cfg.Dataset.Source = types.DatasetSourceCSV
		} else {
			cfg.Dataset.Source = types.DatasetSourceBuiltin
		}
	}

	return nil
}

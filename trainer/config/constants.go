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

const (
	// DefaultConfigFilePath is default path of the config file.
	DefaultConfigFilePath = "/etc/imbalance/imbalance.yaml"

	// DefaultEnvPrefix is default prefix of environment variables.
	DefaultEnvPrefix = "IMBALANCE"
)

const (
	// DefaultLogRotateMaxSize is default maximum size in megabytes of log files before rotation.
	DefaultLogRotateMaxSize = 40

	// DefaultLogRotateMaxAge is default maximum number of days to retain old log files.
	DefaultLogRotateMaxAge = 7

	// DefaultLogRotateMaxBackups is default maximum number of old log files to keep.
	DefaultLogRotateMaxBackups = 20
)

const (
	// DefaultDatasetSeed is default seed of the builtin dataset.
	DefaultDatasetSeed = 1
)

const (
	// DefaultImbalanceClass is default class whose rows are dropped.
	DefaultImbalanceClass = 0

	// DefaultImbalanceDrop is default number of dropped rows.
	DefaultImbalanceDrop = 104
)

const (
	// DefaultSplitTestPercent is default fraction of rows in the test partition.
	DefaultSplitTestPercent = 0.2

	// DefaultSplitSeed is default seed of the split permutation.
	DefaultSplitSeed = 42
)

const (
	// DefaultTrainingEpochs is default number of training epochs.
	DefaultTrainingEpochs = 20

	// DefaultTrainingBatchSize is default number of samples per gradient update.
	DefaultTrainingBatchSize = 32

	// DefaultTrainingLearningRate is default learning rate of the optimizer.
	DefaultTrainingLearningRate = 0.001

	// DefaultTrainingThreshold is default probability threshold of the positive label.
	DefaultTrainingThreshold = 0.5

	// DefaultTrainingSeed is default seed of weight initialization and shuffling.
	DefaultTrainingSeed = 42
)

const (
	// DefaultMetricsAddr is default address for metrics server.
	DefaultMetricsAddr = ":8000"
)

var (
	// DefaultTrainingHiddenLayers is default hidden layer sizes.
	DefaultTrainingHiddenLayers = []int{16, 8}
)

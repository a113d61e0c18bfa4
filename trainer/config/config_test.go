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
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"d7y.io/imbalance/cmd/dependency/base"
)

var (
	mockMetricsConfig = MetricsConfig{
		Enable: true,
		Addr:   DefaultMetricsAddr,
	}
)

func TestConfig_Load(t *testing.T) {
	config := &Config{
		Options: base.Options{
			Console: true,
			Verbose: true,
		},
		Server: ServerConfig{
			LogDir:        "foo",
			LogMaxSize:    512,
			LogMaxAge:     5,
			LogMaxBackups: 3,
			DataDir:       "bar",
		},
		Dataset: DatasetConfig{
			Source:     "csv",
			Path:       "/tmp/breast_cancer.csv",
			HasHeaders: true,
			Seed:       7,
		},
		Imbalance: ImbalanceConfig{
			Enable: true,
			Class:  0,
			Drop:   50,
		},
		Split: SplitConfig{
			TestPercent: 0.25,
			Seed:        3,
		},
		Training: TrainingConfig{
			Epochs:       10,
			BatchSize:    16,
			LearningRate: 0.01,
			HiddenLayers: []int{32, 16},
			Threshold:    0.6,
			Seed:         9,
			Standardize:  false,
			Concurrent:   true,
		},
		Storage: StorageConfig{
			Enable:      true,
			ClearOnExit: true,
		},
		Metrics: MetricsConfig{
			Enable: true,
			Addr:   ":8001",
		},
	}

	imbalanceConfigYAML := &Config{}
	contentYAML, _ := os.ReadFile("./testdata/imbalance.yaml")
	if err := yaml.Unmarshal(contentYAML, &imbalanceConfigYAML); err != nil {
		t.Fatal(err)
	}

	assert := assert.New(t)
	assert.EqualValues(config, imbalanceConfigYAML)
	assert.NoError(imbalanceConfigYAML.Validate())
}

func TestConfig_LoadOverDefaults(t *testing.T) {
	cfg := New()
	contentYAML, err := os.ReadFile("./testdata/logistic.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if err := yaml.Unmarshal(contentYAML, cfg); err != nil {
		t.Fatal(err)
	}

	assert := assert.New(t)
	assert.Equal([]int{4}, cfg.Training.HiddenLayers)
	assert.Equal(300, cfg.Training.Epochs)
	assert.Equal(DefaultTrainingBatchSize, cfg.Training.BatchSize)
	assert.NoError(cfg.Validate())
}

func TestConfig_New(t *testing.T) {
	assert := assert.New(t)
	cfg := New()
	assert.NoError(cfg.Validate())
	assert.Equal("builtin", cfg.Dataset.Source)
	assert.Equal(104, cfg.Imbalance.Drop)
	assert.Equal([]int{16, 8}, cfg.Training.HiddenLayers)

	cfg.Training.HiddenLayers[0] = 1
	assert.Equal([]int{16, 8}, DefaultTrainingHiddenLayers)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		mock   func(cfg *Config)
		expect func(t *testing.T, err error)
	}{
		{
			name:   "valid config",
			config: New(),
			mock:   func(cfg *Config) {},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:   "dataset requires parameter source",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Dataset.Source = "s3"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "dataset requires parameter source")
			},
		},
		{
			name:   "dataset requires parameter path",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Dataset.Source = "csv"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "dataset requires parameter path")
			},
		},
		{
			name:   "imbalance requires parameter drop",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Imbalance.Drop = -1
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "imbalance requires parameter drop")
			},
		},
		{
			name:   "split requires parameter testPercent",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Split.TestPercent = 1
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "split requires parameter testPercent")
			},
		},
		{
			name:   "split requires parameter testPercent not NaN",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Split.TestPercent = math.NaN()
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "split requires parameter testPercent")
			},
		},
		{
			name:   "training requires parameter threshold not NaN",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Training.Threshold = math.NaN()
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter threshold")
			},
		},
		{
			name:   "training requires parameter epochs",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Training.Epochs = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter epochs")
			},
		},
		{
			name:   "training requires parameter batchSize",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Training.BatchSize = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter batchSize")
			},
		},
		{
			name:   "training requires parameter learningRate",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Training.LearningRate = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter learningRate")
			},
		},
		{
			name:   "training requires parameter hiddenLayers",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Training.HiddenLayers = []int{8, 0}
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter hiddenLayers")
			},
		},
		{
			name:   "training requires parameter threshold",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Training.Threshold = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter threshold")
			},
		},
		{
			name:   "metrics requires parameter addr",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Metrics = mockMetricsConfig
				cfg.Metrics.Addr = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "metrics requires parameter addr")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mock(tc.config)
			tc.expect(t, tc.config.Validate())
		})
	}
}

func TestConfig_Convert(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(cfg *Config)
		expect func(t *testing.T, cfg *Config, err error)
	}{
		{
			name: "normalize source",
			mock: func(cfg *Config) {
				cfg.Dataset.Source = " CSV "
			},
			expect: func(t *testing.T, cfg *Config, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("csv", cfg.Dataset.Source)
			},
		},
		{
			name: "infer csv source from path",
			mock: func(cfg *Config) {
				cfg.Dataset.Source = ""
				cfg.Dataset.Path = "foo.csv"
			},
			expect: func(t *testing.T, cfg *Config, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("csv", cfg.Dataset.Source)
			},
		},
		{
			name: "default to builtin source",
			mock: func(cfg *Config) {
				cfg.Dataset.Source = ""
			},
			expect: func(t *testing.T, cfg *Config, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("builtin", cfg.Dataset.Source)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.mock(cfg)
			tc.expect(t, cfg, cfg.Convert())
		})
	}
}

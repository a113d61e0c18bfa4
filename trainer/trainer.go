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

package trainer

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	logger "d7y.io/imbalance/internal/dflog"
	"d7y.io/imbalance/pkg/dfpath"
	"d7y.io/imbalance/pkg/types"
	"d7y.io/imbalance/trainer/config"
	"d7y.io/imbalance/trainer/dataset"
	"d7y.io/imbalance/trainer/metrics"
	"d7y.io/imbalance/trainer/storage"
	"d7y.io/imbalance/trainer/training"
)

const (
	// gracefulStopTimeout specifies a time limit for
	// shutting down the metrics server gracefully.
	gracefulStopTimeout = 10 * time.Second
)

type Server struct {
	// Server configuration.
	config *config.Config

	// Training interface.
	training training.Training

	// Metrics server.
	metricsServer *http.Server

	// Storage interface, nil when storage is disabled.
	storage storage.Storage

	// Report output.
	output io.Writer

	ctx context.Context
}

// Option is a functional option for configuring the server.
type Option func(s *Server)

// WithTraining replaces the training built from config.
func WithTraining(t training.Training) Option {
	return func(s *Server) {
		s.training = t
	}
}

// WithOutput sets the writer of the plain text report.
func WithOutput(w io.Writer) Option {
	return func(s *Server) {
		s.output = w
	}
}

// New returns a new Server.
func New(ctx context.Context, cfg *config.Config, d dfpath.Dfpath, options ...Option) (*Server, error) {
	s := &Server{
		config: cfg,
		output: os.Stdout,
		ctx:    ctx,
	}

	for _, opt := range options {
		opt(s)
	}

	// Initialize Storage.
	if cfg.Storage.Enable {
		s.storage = storage.New(d.DataDir())
	}

	// Initialize training.
	if s.training == nil {
		var trainingOptions []training.Option
		if s.storage != nil {
			trainingOptions = append(trainingOptions, training.WithStorage(s.storage))
		}

		if cfg.Console {
			trainingOptions = append(trainingOptions, training.WithProgress(os.Stderr))
		}

		s.training = training.New(cfg, NewProvider(&cfg.Dataset), trainingOptions...)
	}

	// Initialize metrics.
	if cfg.Metrics.Enable {
		s.metricsServer = metrics.New(&cfg.Metrics)
	}

	return s, nil
}

// NewProvider returns the dataset provider of the source.
func NewProvider(cfg *config.DatasetConfig) dataset.Provider {
	if cfg.Source == types.DatasetSourceCSV {
		return dataset.NewCSVProvider(cfg.Path, cfg.HasHeaders)
	}

	return dataset.NewBuiltinProvider(cfg.Seed)
}

// Serve runs the experiment once and writes the report. With metrics enabled
// it keeps serving /metrics until the context is done.
func (s *Server) Serve() error {
	// Started metrics server.
	if s.metricsServer != nil {
		go func() {
			logger.Infof("started metrics server at %s", s.metricsServer.Addr)
			if err := s.metricsServer.ListenAndServe(); err != nil {
				if err == http.ErrServerClosed {
					return
				}

				logger.Fatalf("metrics server closed unexpect: %s", err.Error())
			}
		}()
	}

	report, err := s.training.Train(s.ctx)
	if err != nil {
		logger.Errorf("train failed: %s", err.Error())
		return err
	}

	if err := report.Print(s.output); err != nil {
		return err
	}

	if s.metricsServer != nil {
		logger.Infof("run %s finished, serving metrics at %s until interrupted", report.RunID, s.metricsServer.Addr)
		<-s.ctx.Done()
	}

	return nil
}

// ServeWeights computes the class weights and writes the report.
func (s *Server) ServeWeights() error {
	report, err := s.training.ComputeWeights(s.ctx)
	if err != nil {
		logger.Errorf("compute weights failed: %s", err.Error())
		return err
	}

	return report.Print(s.output)
}

// Stop shuts down the metrics server and clears storage on demand.
func (s *Server) Stop() {
	// Stop metrics server.
	if s.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), gracefulStopTimeout)
		defer cancel()

		if err := s.metricsServer.Shutdown(ctx); err != nil {
			logger.Errorf("metrics server failed to stop: %s", err.Error())
		} else {
			logger.Info("metrics server closed under request")
		}
	}

	// Clean storage file.
	if s.storage != nil && s.config.Storage.ClearOnExit {
		if err := s.storage.Clear(); err != nil {
			logger.Errorf("clean storage file failed %s", err.Error())
		} else {
			logger.Info("clean storage file completed")
		}
	}
}

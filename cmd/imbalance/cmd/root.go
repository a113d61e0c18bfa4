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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"d7y.io/imbalance/cmd/dependency"
	logger "d7y.io/imbalance/internal/dflog"
	"d7y.io/imbalance/pkg/dfpath"
	"d7y.io/imbalance/trainer"
	"d7y.io/imbalance/trainer/config"
	"d7y.io/imbalance/version"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "imbalance",
	Short: "class weighting experiment for imbalanced binary classification",
	Long: `Imbalance makes a binary classification dataset imbalanced by dropping rows of one class,
computes balanced class weights from the train partition and trains the same network twice,
once with uniform weights and once with the balanced weights, then reports the positive prediction
rate and accuracy of both models on the test partition.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svr, err := initServer(ctx, cmd)
		if err != nil {
			return err
		}

		// Cancelling stops training, Serve returns and the server stops.
		dependency.SetupQuitSignalHandler(cancel)
		defer svr.Stop()

		return svr.Serve()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	// Initialize default imbalance config.
	cfg = config.New()
	// Initialize command and config.
	dependency.InitCommandAndConfig(rootCmd, true, cfg)

	rootCmd.AddCommand(weightsCmd)
}

// initServer converts and validates config, then initializes paths, logger and server.
func initServer(ctx context.Context, cmd *cobra.Command) (*trainer.Server, error) {
	// Convert config.
	if err := cfg.Convert(); err != nil {
		return nil, err
	}

	// Validate config.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Initialize dfpath.
	d, err := initDfpath(&cfg.Server)
	if err != nil {
		return nil, err
	}
	rotateConfig := logger.LogRotateConfig{
		MaxSize:    cfg.Server.LogMaxSize,
		MaxAge:     cfg.Server.LogMaxAge,
		MaxBackups: cfg.Server.LogMaxBackups}

	// Initialize logger.
	if err := logger.InitImbalance(cfg.Verbose, cfg.Console, d.LogDir(), rotateConfig); err != nil {
		return nil, fmt.Errorf("init imbalance logger: %w", err)
	}
	logger.Infof("version: %s", version.Version())

	return trainer.New(ctx, cfg, d, trainer.WithOutput(cmd.OutOrStdout()))
}

func initDfpath(cfg *config.ServerConfig) (dfpath.Dfpath, error) {
	var options []dfpath.Option
	if cfg.LogDir != "" {
		options = append(options, dfpath.WithLogDir(cfg.LogDir))
	}

	if cfg.DataDir != "" {
		options = append(options, dfpath.WithDataDir(cfg.DataDir))
	}

	return dfpath.New(options...)
}

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

package dependency

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	logger "d7y.io/imbalance/internal/dflog"
	"d7y.io/imbalance/trainer/config"
)

// InitCommandAndConfig initializes flags binding and common sub cmds.
// config is a pointer to configuration struct.
func InitCommandAndConfig(cmd *cobra.Command, useConfigFile bool, cfg any) {
	rootName := cmd.Root().Name()
	cobra.OnInitialize(func() { initConfig(useConfigFile, cfg) })

	if !cmd.HasParent() {
		// Add common flags
		flags := cmd.PersistentFlags()
		flags.Bool("console", false, "whether logger output records to the stdout")
		flags.Bool("verbose", false, "whether logger use debug level")

		if useConfigFile {
			flags.String("config", config.DefaultConfigFilePath, fmt.Sprintf("the path of configuration file with yaml extension name, default is %s, it can also be set by env var: %s", config.DefaultConfigFilePath, config.DefaultEnvPrefix+"_CONFIG"))
		}

		// Bind common flags
		if err := viper.BindPFlags(flags); err != nil {
			panic(fmt.Errorf("bind common flags to viper: %w", err))
		}

		// Add common cmds only on root cmd
		cmd.AddCommand(VersionCmd)
		cmd.AddCommand(newConfigCommand(rootName, cfg))
	}
}

// SetupQuitSignalHandler sets signal handler.
func SetupQuitSignalHandler(handler func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		var done bool
		for sig := range signals {
			logger.Warnf("receive %s signal", sig)
			if !done {
				done = true
				handler()
				logger.Warnf("handle signal %s finish", sig)
			}
		}
	}()
}

// initConfig reads in config file and ENV variables if set.
func initConfig(useConfigFile bool, cfg any) {
	// Config for binding env, training.epochs reads IMBALANCE_TRAINING_EPOCHS.
	viper.SetEnvPrefix(config.DefaultEnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if err := bindEnvs(cfg); err != nil {
		panic(fmt.Errorf("bind env to viper: %w", err))
	}

	// Use config file and read once.
	if useConfigFile {
		cfgFile := viper.GetString("config")
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			ignoreErr := false
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				ignoreErr = true
			}

			// The default config file is optional.
			var perr *os.PathError
			if errors.As(err, &perr) && filepath.Clean(cfgFile) == filepath.Clean(config.DefaultConfigFilePath) {
				ignoreErr = true
			}

			if !ignoreErr {
				panic(fmt.Errorf("viper read config: %w", err))
			}
		}
	}

	if err := viper.Unmarshal(cfg, initDecoderConfig); err != nil {
		panic(fmt.Errorf("unmarshal config to struct: %w", err))
	}
}

// bindEnvs binds every nested key of cfg, AutomaticEnv alone only
// resolves keys viper already knows about.
func bindEnvs(cfg any) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := yaml.Unmarshal(out, &tree); err != nil {
		return err
	}

	return bindEnvTree("", tree)
}

func bindEnvTree(prefix string, tree map[string]any) error {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}

		if sub, ok := value.(map[string]any); ok {
			if err := bindEnvTree(key, sub); err != nil {
				return err
			}
			continue
		}

		if err := viper.BindEnv(key); err != nil {
			return err
		}
	}

	return nil
}

func initDecoderConfig(dc *mapstructure.DecoderConfig) {
	// Replace default slices instead of decoding over them.
	dc.ZeroFields = true
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// newConfigCommand prints the loaded configuration as yaml.
func newConfigCommand(name string, cfg any) *cobra.Command {
	return &cobra.Command{
		Use:               "config",
		Short:             fmt.Sprintf("show %s configuration", name),
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

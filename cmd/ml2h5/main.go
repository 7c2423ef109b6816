// Copyright 2023 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/gorse-io/ml2h5/base/log"
	"github.com/gorse-io/ml2h5/cmd/version"
	"github.com/gorse-io/ml2h5/config"
	"github.com/gorse-io/ml2h5/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var settings *config.Settings

var rootCommand = &cobra.Command{
	Use:   "ml2h5",
	Short: "Convert machine learning datasets between file formats.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)

		// load config
		configPath, _ := cmd.Flags().GetString("config")
		if configPath != "" {
			log.Logger().Info("load config", zap.String("config", configPath))
		}
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		if settings, err = config.NewSettings(conf); err != nil {
			log.Logger().Fatal("invalid config", zap.Error(err))
		}
		format.DefaultDetector = settings.Detector
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.CloseLogger()
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show the version of ml2h5.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.BuildInfo())
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.AddCommand(versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}

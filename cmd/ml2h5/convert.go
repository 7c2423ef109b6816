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

	"github.com/gorse-io/ml2h5/base"
	"github.com/gorse-io/ml2h5/base/log"
	"github.com/gorse-io/ml2h5/converter"
	"github.com/gorse-io/ml2h5/format"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCommand.AddCommand(convertCommand)
	convertCommand.Flags().String("format-in", "", "format of the input file (detected if empty)")
	convertCommand.Flags().String("format-out", "", "format of the output file (detected if empty)")
	convertCommand.Flags().String("separator", "", "field separator of text formats")
	convertCommand.Flags().Bool("header", false, "the first CSV line holds attribute names")
	convertCommand.Flags().Bool("no-merge", false, "keep numeric columns apart in dataset containers")
	convertCommand.Flags().Bool("compress", false, "compress dataset containers and MAT-files")
	convertCommand.Flags().Bool("densify", false, "store dense enough LibSVM features as a block")
	convertCommand.Flags().Bool("verify", false, "compare the output with the input")
	convertCommand.Flags().Bool("progress", false, "show a progress bar")
}

var convertCommand = &cobra.Command{
	Use:   "convert IN [OUT]",
	Short: "Convert a dataset file. OUT defaults to IN with the .h5 extension.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pathIn := args[0]
		pathOut := format.CanonicalName(pathIn)
		if len(args) > 1 {
			pathOut = args[1]
		}
		formatIn, err := parseFormat(cmd, "format-in")
		if err != nil {
			return err
		}
		formatOut, err := parseFormat(cmd, "format-out")
		if err != nil {
			return err
		}
		opts, err := convertOptions(cmd)
		if err != nil {
			return err
		}

		c, err := converter.NewWithFormats(pathIn, pathOut, formatIn, formatOut, opts)
		if err != nil {
			return reportError(err)
		}
		if err = c.Run(settings.Config.Convert.RemoveOut); err != nil {
			return reportError(err)
		}
		for _, diagnostic := range c.Diagnostics() {
			fmt.Printf("%s: %s\n", pathIn, diagnostic)
		}
		verify := settings.Config.Convert.Verify
		if cmd.Flags().Changed("verify") {
			verify, _ = cmd.Flags().GetBool("verify")
		}
		if verify {
			if _, err = c.Verify(); err != nil {
				return reportError(err)
			}
		}
		fmt.Printf("converted %s (%s) to %s (%s)\n", pathIn, c.FormatIn, pathOut, c.FormatOut)
		return nil
	},
	SilenceUsage: true,
}

func parseFormat(cmd *cobra.Command, name string) (format.Format, error) {
	text, _ := cmd.Flags().GetString(name)
	if text == "" {
		return format.Unknown, nil
	}
	f, err := format.Parse(text)
	return f, errors.Annotatef(err, "--%s", name)
}

// convertOptions applies flags set on the command line over the config.
func convertOptions(cmd *cobra.Command) (converter.Options, error) {
	var overrides []converter.Option
	flags := cmd.Flags()
	if flags.Changed("separator") {
		text, _ := flags.GetString("separator")
		sep, err := base.ParseSeparator(text)
		if err != nil {
			return converter.Options{}, errors.Trace(err)
		}
		overrides = append(overrides, converter.WithSeparator(sep))
	}
	if flags.Changed("header") {
		header, _ := flags.GetBool("header")
		overrides = append(overrides, converter.WithHeaderFirst(header))
	}
	if flags.Changed("no-merge") {
		noMerge, _ := flags.GetBool("no-merge")
		overrides = append(overrides, converter.WithMerge(!noMerge))
	}
	if flags.Changed("compress") {
		compress, _ := flags.GetBool("compress")
		overrides = append(overrides, converter.WithCompression(compress))
	}
	if flags.Changed("densify") {
		densify, _ := flags.GetBool("densify")
		overrides = append(overrides, converter.WithDensify(densify))
	}
	if flags.Changed("progress") {
		progress, _ := flags.GetBool("progress")
		overrides = append(overrides, converter.WithProgress(progress))
	}
	return settings.ConverterOptions(overrides...), nil
}

func reportError(err error) error {
	switch {
	case converter.IsUnsupported(err):
		log.Logger().Error("unsupported conversion", zap.Error(err))
	case converter.IsConversionError(err):
		log.Logger().Error("conversion failed", zap.Error(err))
	}
	return err
}

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
	"strconv"

	"github.com/gorse-io/ml2h5/converter"
	"github.com/gorse-io/ml2h5/format"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	rootCommand.AddCommand(infoCommand)
}

var infoCommand = &cobra.Command{
	Use:          "info FILE",
	Short:        "Summarize a dataset file.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := converter.Describe(args[0], settings.ConverterOptions())
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("property", "value")
		rows := [][]string{
			{"format", desc.Format.String()},
			{"name", desc.Name},
			{"group", desc.Group.String()},
			{"instances", strconv.Itoa(desc.Instances)},
			{"attributes", strconv.Itoa(desc.Attributes)},
		}
		if desc.Format == format.H5 {
			for _, f := range []format.Format{format.CSV, format.ARFF, format.LibSVM, format.Matlab, format.Octave, format.RData} {
				rows = append(rows, []string{"to " + f.String(), strconv.FormatBool(converter.CanConvert(f, args[0]))})
			}
		}
		for _, row := range rows {
			if err = table.Append(row); err != nil {
				return errors.Trace(err)
			}
		}
		if err = table.Render(); err != nil {
			return errors.Trace(err)
		}

		if len(desc.Extract) == 0 {
			return nil
		}
		fmt.Println()
		extract := tablewriter.NewWriter(os.Stdout)
		header := make([]any, len(desc.Names))
		for i, name := range desc.Names {
			header[i] = name
		}
		extract.Header(header...)
		if err = extract.Bulk(desc.Extract); err != nil {
			return errors.Trace(err)
		}
		return errors.Trace(extract.Render())
	},
}

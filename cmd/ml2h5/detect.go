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

	"github.com/spf13/cobra"
)

func init() {
	rootCommand.AddCommand(detectCommand)
	detectCommand.Flags().Bool("skip-suffix", false, "detect by content only")
}

var detectCommand = &cobra.Command{
	Use:   "detect FILE...",
	Short: "Detect formats of dataset files.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		skipSuffix, _ := cmd.Flags().GetBool("skip-suffix")
		for _, path := range args {
			f := settings.Detector.DetectWith(path, skipSuffix)
			if len(args) == 1 {
				fmt.Println(f)
				continue
			}
			fmt.Printf("%s: %s\n", path, f)
		}
	},
}

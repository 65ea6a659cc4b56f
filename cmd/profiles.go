/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/agentran/internal/registry"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the specialist translator profiles",
	Long: `List the specialist translator profiles the style manager chooses from,
with their effective sampling temperatures. Temperatures can be overridden per
profile in the config file (temperatures.legal: 0.2) or with <PROFILE>_TEMPERATURE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		reg, err := registry.New(cfg.Temperatures)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tTEMPERATURE\tFOCUS")
		for _, p := range reg.Profiles() {
			focus := p.Focus
			if p.Dynamic {
				focus = "guidelines chosen per session"
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", p.Key, p.Name, p.Temperature, focus)
			if verbose {
				fmt.Fprintf(w, "\t\t\t%s\n", strings.ReplaceAll(p.SystemRole, "\n", " "))
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

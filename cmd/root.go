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
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.3.0"

var (
	cfgFile string
	verbose bool

	// logger is replaced once the configuration is loaded.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "agentran",
	Short: "Agentic LLM document translator",
	Long: `A CLI application that translates documents through a multi-stage LLM pipeline.

A style manager picks a specialist translator profile for the document, then
every chunk is drafted, reviewed, revised and checked against an optional
glossary.

Supported inputs: .txt .md .json .html .docx .pptx .pdf

Use "agentran translate --help" for translation options.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: agentran.yaml in . or $HOME/.config/agentran)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Human-readable debug logging")
}

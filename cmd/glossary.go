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
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/agentran/internal/langs"
	"github.com/valpere/agentran/internal/terminology"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the terminology glossary",
	Long: `Add, list, import and delete terminology glossary entries.

Stored entries are merged into a translation with "agentran translate
--glossary-db" and enforced by the terminology check of every chunk. Use
them for proper nouns, brand names and domain-specific vocabulary.

Languages may be given as codes (en) or names (English); they are stored
as codes.`,
}

var (
	glossaryListSource string
	glossaryListTarget string
)

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List glossary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := optionalCode(glossaryListSource)
		if err != nil {
			return err
		}
		tgt, err := optionalCode(glossaryListTarget)
		if err != nil {
			return err
		}

		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		// Pass empty strings to list everything; flags narrow the filter.
		entries, err := db.ListGlossaryTerms(context.Background(), src, tgt)
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE LANG\tTARGET LANG\tSOURCE TERM\tTARGET TERM")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.SourceLang, e.TargetLang, e.SourceTerm, e.TargetTerm)
		}
		return w.Flush()
	},
}

var (
	glossaryAddSource string
	glossaryAddTarget string
)

var glossaryAddCmd = &cobra.Command{
	Use:   "add <source-term> <target-term>",
	Short: "Add or update a glossary entry",
	Long: `Add a glossary entry mapping a source-language term to a target-language term.

Example:
  agentran glossary add "Kyiv" "Київ" --source en --target uk`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, tgt, err := languagePair(glossaryAddSource, glossaryAddTarget)
		if err != nil {
			return err
		}

		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddGlossaryTerm(context.Background(), src, tgt, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to add glossary entry: %w", err)
		}
		fmt.Printf("Added: [%s→%s] %q → %q\n", src, tgt, args[0], args[1])
		return nil
	},
}

var glossaryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a glossary file into the database",
	Long: `Import every term of a glossary file (CSV, TSV, XLSX, JSON, YAML, TOML
or TXT) for one language pair. Existing entries for the same source term are
replaced.

Example:
  agentran glossary import terms.xlsx --source en --target de`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, tgt, err := languagePair(glossaryAddSource, glossaryAddTarget)
		if err != nil {
			return err
		}

		terms, err := terminology.ParseFile(args[0])
		if err != nil {
			return err
		}

		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ImportGlossary(context.Background(), src, tgt, terms.Entries())
		if err != nil {
			return fmt.Errorf("failed to import glossary: %w", err)
		}
		fmt.Printf("Imported %d term(s) for %s→%s\n", n, src, tgt)
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary entry by ID",
	Long:  `Delete a glossary entry by its ID (shown in "agentran glossary list").`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteGlossaryTerm(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary entry: %w", err)
		}
		fmt.Printf("Deleted glossary entry: %s\n", args[0])
		return nil
	},
}

func languagePair(source, target string) (string, string, error) {
	if source == "" {
		return "", "", fmt.Errorf("--source language flag is required")
	}
	if target == "" {
		return "", "", fmt.Errorf("--target language flag is required")
	}
	src, err := langs.Normalize(source)
	if err != nil {
		return "", "", err
	}
	tgt, err := langs.Normalize(target)
	if err != nil {
		return "", "", err
	}
	return src.Code(), tgt.Code(), nil
}

func optionalCode(lang string) (string, error) {
	if lang == "" {
		return "", nil
	}
	l, err := langs.Normalize(lang)
	if err != nil {
		return "", err
	}
	return l.Code(), nil
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	addDBFlag(glossaryCmd.PersistentFlags())

	// --source / --target flags on the list subcommand for optional filtering.
	glossaryListCmd.Flags().StringVarP(&glossaryListSource, "source", "s", "", "Filter by source language (e.g. en)")
	glossaryListCmd.Flags().StringVarP(&glossaryListTarget, "target", "t", "", "Filter by target language (e.g. uk)")

	// --source / --target are required for add and import.
	for _, c := range []*cobra.Command{glossaryAddCmd, glossaryImportCmd} {
		c.Flags().StringVarP(&glossaryAddSource, "source", "s", "", "Source language (e.g. en)")
		c.Flags().StringVarP(&glossaryAddTarget, "target", "t", "", "Target language (e.g. uk)")
	}

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryImportCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}

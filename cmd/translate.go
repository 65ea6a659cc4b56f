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
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/agentran/internal"
	"github.com/valpere/agentran/internal/chunker"
	"github.com/valpere/agentran/internal/config"
	"github.com/valpere/agentran/internal/detector"
	"github.com/valpere/agentran/internal/docio"
	"github.com/valpere/agentran/internal/engine"
	"github.com/valpere/agentran/internal/langs"
	"github.com/valpere/agentran/internal/manager"
	"github.com/valpere/agentran/internal/terminology"
	"github.com/valpere/agentran/internal/validator"
)

var (
	inputFile    string
	outputDir    string
	glossaryFile string
	sourceLang   string
	targetLang   string

	translationType string
	brief           string

	useGlossaryDB bool
	saveSession   bool
	protectMarkup bool
	skipValidate  bool

	detectWith string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a document",
	Long: `Translate a document through the multi-stage LLM pipeline.

A style manager first chooses the specialist translator for the document:
  --type auto            let the manager detect the style from the text
  --type Legal           ask for a style directly
  --brief "..."          describe the audience and tone in your own words

Every chunk is then drafted by the specialist, reviewed, revised and, when a
glossary is given, checked against it. The translated document is written
next to the input as <name>_translated<ext>, together with <name>_details.json
holding every intermediate step.

Glossaries:
  -g terms.csv           CSV, TSV, XLSX, JSON, YAML, TOML or TXT term list
  --glossary-db          also use terms stored with "agentran glossary add"

Example:
  agentran translate -i contract.docx -s en -t uk --type Legal -g terms.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		doc, err := docio.Read(inputFile, cfg.MaxFileSize)
		if err != nil {
			return err
		}
		chunks := chunker.SplitUnits(doc.Units, chunker.Options{MaxChars: cfg.ChunkSize, Overlap: cfg.ChunkOverlap})
		if len(chunks) == 0 {
			return fmt.Errorf("no text found in %s", inputFile)
		}
		fmt.Fprintf(os.Stderr, "Read %s: %d unit(s), %d chunk(s)\n", inputFile, doc.UnitCount(), len(chunks))

		id, closeID, err := buildIdentifier(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeID()

		src, tgt, err := resolveLanguages(ctx, id, chunks[0].Text)
		if err != nil {
			return err
		}

		terms, err := loadTerminology(ctx, cfg, src, tgt)
		if err != nil {
			return err
		}
		if !terms.IsEmpty() {
			fmt.Fprintf(os.Stderr, "Glossary: %d term(s)\n", terms.Len())
		}

		gw, release, err := buildGateway(ctx, cfg)
		if err != nil {
			return err
		}
		defer release()

		eng, err := engine.New(cfg, gw,
			engine.WithLogger(logger.Named("engine")),
			engine.WithProgress(printProgress),
		)
		if err != nil {
			return err
		}

		session, err := eng.Translate(ctx, engine.Request{
			Chunks:        chunks,
			SourceLang:    src.Name,
			TargetLang:    tgt.Name,
			RequestedType: translationType,
			Brief:         brief,
			Terminology:   terms,
			ProtectMarkup: protectMarkup,
		})
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		finals := make([]docio.Final, len(session.Chunks))
		for i, c := range session.Chunks {
			finals[i] = docio.Final{Unit: c.Unit, Text: c.Final()}
		}
		outPath, err := docio.Write(doc, finals, outputDir)
		if err != nil {
			return err
		}
		result := session.Result()
		detailsPath, err := docio.WriteDetails(doc, result, outputDir)
		if err != nil {
			return err
		}

		if !skipValidate {
			v := validator.New(id)
			if ok, verr := v.IsValid(ctx, session.Text(), tgt.Code()); !ok {
				fmt.Fprintf(os.Stderr, "Warning: translation may not be in %s: %v\n", tgt.Name, verr)
			}
		}

		if saveSession {
			sessionID, err := recordSession(ctx, cfg, doc, outPath, src, tgt, result)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Session saved: %s\n", sessionID)
		}

		fmt.Printf("Successfully translated %s to %s\n", src.Name, tgt.Name)
		fmt.Printf("Translation type: %s (%s)\n", result.TranslationType, strings.Join(result.SelectedTranslators, ", "))
		fmt.Printf("Time: %.2fs, tokens: %d\n", result.TotalTime, result.TotalTokens)
		fmt.Printf("Output:  %s\n", outPath)
		fmt.Printf("Details: %s\n", detailsPath)
		return nil
	},
}

// buildIdentifier returns the language identifier chosen by --detect.
func buildIdentifier(ctx context.Context, cfg config.Config) (detector.Identifier, func(), error) {
	switch detectWith {
	case "local", "":
		return detector.New(), func() {}, nil
	case "cloud":
		c, err := detector.NewCloud(ctx, cfg.Credentials)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create cloud detector: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown detector %q (use local or cloud)", detectWith)
	}
}

// resolveLanguages normalises --source and --target. An "auto" source is
// detected from sample.
func resolveLanguages(ctx context.Context, id detector.Identifier, sample string) (langs.Language, langs.Language, error) {
	tgt, err := langs.Normalize(targetLang)
	if err != nil {
		return langs.Language{}, langs.Language{}, err
	}

	if !manager.IsAuto(sourceLang) {
		src, err := langs.Normalize(sourceLang)
		return src, tgt, err
	}

	code, err := id.Identify(ctx, sample)
	if err != nil {
		return langs.Language{}, langs.Language{}, err
	}
	if code == "" {
		return langs.Language{}, langs.Language{}, fmt.Errorf("could not detect the source language, set --source")
	}
	src, err := langs.Normalize(code)
	if err != nil {
		return langs.Language{}, langs.Language{}, err
	}
	fmt.Fprintf(os.Stderr, "Detected source language: %s\n", src.Name)
	return src, tgt, nil
}

// loadTerminology merges stored glossary terms with the glossary file; the
// file wins on conflicts.
func loadTerminology(ctx context.Context, cfg config.Config, src, tgt langs.Language) (terminology.Map, error) {
	var terms terminology.Map

	if useGlossaryDB {
		db, err := openStore(cfg.DBPath)
		if err != nil {
			return terms, err
		}
		defer db.Close()

		stored, err := db.GetGlossaryTerms(ctx, src.Code(), tgt.Code())
		if err != nil {
			return terms, fmt.Errorf("failed to load glossary: %w", err)
		}
		terms = terminology.New(stored)
	}

	if glossaryFile != "" {
		fromFile, err := terminology.ParseFile(glossaryFile)
		if err != nil {
			return terms, err
		}
		terms = terms.Merge(fromFile)
	}
	return terms, nil
}

func recordSession(ctx context.Context, cfg config.Config, doc *docio.Document, outPath string, src, tgt langs.Language, result engine.Result) (string, error) {
	details, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	db, err := openStore(cfg.DBPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	id, err := db.SaveSession(ctx, internal.SessionRecord{
		SourceFile:      doc.Path,
		OutputFile:      outPath,
		SourceLang:      src.Code(),
		TargetLang:      tgt.Code(),
		TranslationType: result.TranslationType,
		Profiles:        result.SelectedTranslators,
		Provider:        cfg.Provider,
		Model:           cfg.Model,
		Chunks:          len(result.Chunks),
		Tokens:          result.TotalTokens,
		Seconds:         result.TotalTime,
		Details:         string(details),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	logger.Info("session saved", zap.String("id", id))
	return id, nil
}

func printProgress(ev engine.Event) {
	switch ev.Kind {
	case engine.DecisionMade:
		d := ev.Decision
		if d.Fallback {
			fmt.Fprintf(os.Stderr, "Style manager reply unusable, using defaults\n")
		}
		fmt.Fprintf(os.Stderr, "Translation type: %s\n", d.TranslationType)
		fmt.Fprintf(os.Stderr, "Selected translators: %s\n", strings.Join(d.Profiles, ", "))
	case engine.StageStarted:
		fmt.Fprintf(os.Stderr, "[%d/%d] %s...\n", ev.Chunk+1, ev.Total, ev.Stage)
	case engine.ChunkFinished:
		fmt.Fprintf(os.Stderr, "[%d/%d] done\n", ev.Chunk+1, ev.Total)
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate (required)")
	translateCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the output files (default: next to the input)")
	translateCmd.Flags().StringVarP(&glossaryFile, "glossary", "g", "", "Glossary file")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language name or code (auto to detect)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language name or code (required)")

	translateCmd.Flags().StringVar(&translationType, "type", manager.Auto, "Translation style, or auto to let the manager decide")
	translateCmd.Flags().StringVar(&brief, "brief", "", "Free-text description of the wanted style")

	translateCmd.Flags().BoolVar(&useGlossaryDB, "glossary-db", false, "Merge glossary terms stored in the database")
	translateCmd.Flags().BoolVar(&saveSession, "save", false, "Record the session in the database")
	translateCmd.Flags().BoolVar(&protectMarkup, "protect-markup", false, "Keep code, tags, URLs and template variables untranslated")
	translateCmd.Flags().BoolVar(&skipValidate, "no-validate", false, "Skip the target language check of the result")

	translateCmd.Flags().StringVar(&detectWith, "detect", "local", "Language detector for --source auto: local or cloud")

	addConfigFlags(translateCmd.Flags())

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("target")
}

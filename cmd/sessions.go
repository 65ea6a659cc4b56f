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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect recorded translation sessions",
	Long: `List, inspect and delete translation sessions recorded with
"agentran translate --save".`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		sessions, err := db.ListSessions(context.Background(), sessionsLimit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No recorded sessions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tTARGET\tTYPE\tCHUNKS\tTOKENS\tTIME\tFILE")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
				s.ID[:min(8, len(s.ID))], s.CreatedAt.Local().Format("2006-01-02 15:04"),
				s.SourceLang, s.TargetLang, s.TranslationType,
				s.Chunks, s.Tokens, formatSeconds(s.Seconds), s.SourceFile)
		}
		return w.Flush()
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session and its per-chunk details",
	Long:  `Show a recorded session. The ID may be shortened to any unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		s, err := db.GetSession(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		fmt.Printf("ID:          %s\n", s.ID)
		fmt.Printf("Created:     %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Input:       %s\n", s.SourceFile)
		fmt.Printf("Output:      %s\n", s.OutputFile)
		fmt.Printf("Languages:   %s → %s\n", s.SourceLang, s.TargetLang)
		fmt.Printf("Type:        %s\n", s.TranslationType)
		fmt.Printf("Translators: %s\n", strings.Join(s.Profiles, ", "))
		fmt.Printf("Model:       %s/%s\n", s.Provider, s.Model)
		fmt.Printf("Chunks:      %d\n", s.Chunks)
		fmt.Printf("Tokens:      %d\n", s.Tokens)
		fmt.Printf("Time:        %s\n", formatSeconds(s.Seconds))

		if s.Details != "" {
			var out bytes.Buffer
			if err := json.Indent(&out, []byte(s.Details), "", "  "); err != nil {
				return fmt.Errorf("failed to format details: %w", err)
			}
			fmt.Printf("\n%s\n", out.String())
		}
		return nil
	},
}

var sessionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Sessions:     %d\n", stats.Sessions)
		fmt.Printf("Chunks:       %d\n", stats.Chunks)
		fmt.Printf("Total tokens: %d\n", stats.TotalTokens)
		fmt.Printf("Total time:   %s\n", formatSeconds(stats.TotalSeconds))

		types := make([]string, 0, len(stats.ByType))
		for t := range stats.ByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Printf("  %-20s %d\n", t, stats.ByType[t])
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openConfiguredStore(cmd.Flags())
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		s, err := db.GetSession(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		if err := db.DeleteSession(ctx, s.ID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		fmt.Printf("Deleted session: %s\n", s.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	addDBFlag(sessionsCmd.PersistentFlags())
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum sessions to list (0 = all)")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsStatsCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

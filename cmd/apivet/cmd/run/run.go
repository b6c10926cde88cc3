// SPDX-License-Identifier: Apache-2.0

package run

import (
	"fmt"
	"time"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/core/sanitize"
	"github.com/kusari-oss/apivet/internal/vet/classify"
	"github.com/kusari-oss/apivet/internal/vet/executor"
	"github.com/kusari-oss/apivet/internal/vet/store"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute plans and work with run results",
	Long:  `Commands for executing cached plans, analyzing failures and building reports.`,
}

func GetRunCmd() *cobra.Command {
	return runCmd
}

func init() {
	runCmd.AddCommand(getExecuteCmd())
	runCmd.AddCommand(getAnalyzeCmd())
	runCmd.AddCommand(getReportCmd())
	runCmd.AddCommand(getFlowCmd())
}

// openStore opens the plan/run store at the configured data directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}
	return st, nil
}

// buildEngine assembles the execution engine from configuration, loading
// custom classification rules when a rules file is configured.
func buildEngine(cfg *config.Config, rulesFile string) (*executor.Engine, error) {
	if rulesFile == "" {
		rulesFile = cfg.RulesFile
	}

	classifier := classify.New()
	if rulesFile != "" {
		rules, err := classify.LoadRules(rulesFile)
		if err != nil {
			return nil, fmt.Errorf("error loading rules file: %w", err)
		}
		classifier = classify.NewWithRules(rules)
	}

	sanitizer := sanitize.New(cfg.BodyCap, cfg.SnippetCap)
	return executor.New(sanitizer, classifier), nil
}

// engineOptions resolves per-run execution knobs, preferring flags over
// configuration.
func engineOptions(cfg *config.Config, concurrency, timeoutSeconds int) executor.Options {
	opts := executor.Options{
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout(),
	}
	if concurrency > 0 {
		opts.Concurrency = concurrency
	}
	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return opts
}

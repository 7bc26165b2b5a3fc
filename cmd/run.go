package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/korelang/ksym/formatter"
	"github.com/korelang/ksym/internal/unify"
	"github.com/korelang/ksym/ksym"
)

var (
	runJsonOutput bool
	outPath       string
	runWatch      bool
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Answer the queries in the given files and directories",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide query file or directory paths")
			os.Exit(1)
		}

		engine, err := ksym.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to initialize query engine", zap.Error(err))
		}
		defer engine.Close()

		if runWatch {
			watchQueryProcess(logger, engine, args)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		runQueryProcess(ctx, logger, engine, args, runJsonOutput, outPath)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runJsonOutput, "json", false, "Output results in JSON format")
	runCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Rerun query files when they change")
}

func runQueryProcess(ctx context.Context, logger *zap.Logger, engine ksym.QueryEngine, paths []string, isJson bool, jsonOutput string) {
	results, err := ksym.ProcessFiles(ctx, logger, engine, paths, ksym.ProcessFile)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	printResults(logger, results, isJson, jsonOutput)

	if countFailures(results) > 0 {
		os.Exit(1)
	}
}

// watchQueryProcess answers the given paths once, then reruns query
// files as they change, until interrupted.
func watchQueryProcess(logger *zap.Logger, engine ksym.QueryEngine, paths []string) {
	ctx := context.Background()

	results, err := ksym.ProcessFiles(ctx, logger, engine, paths, ksym.ProcessFile)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}
	printResults(logger, results, false, "")

	watcher, err := ksym.NewWatcher(engine, logger, func(path string, results []ksym.Result) {
		fmt.Println(path)
		for _, res := range results {
			fmt.Print(renderResult(res))
		}
	})
	if err != nil {
		logger.Error("Error starting watcher", zap.Error(err))
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(paths...); err != nil {
		logger.Error("Error watching paths", zap.Error(err))
		os.Exit(1)
	}

	if err := watcher.Run(ctx); err != nil {
		logger.Error("Watcher stopped", zap.Error(err))
		os.Exit(1)
	}
}

func printResults(logger *zap.Logger, results []ksym.Result, isJson bool, jsonOutput string) {
	resultsByFile := make(map[string][]ksym.Result)
	for _, res := range results {
		resultsByFile[res.Path] = append(resultsByFile[res.Path], res)
	}

	sortedFiles := make([]string, 0, len(resultsByFile))
	for filename := range resultsByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	if !isJson {
		// text output
		for _, filename := range sortedFiles {
			if filename != "" {
				fmt.Println(filename)
			}
			for _, res := range resultsByFile[filename] {
				fmt.Print(renderResult(res))
			}
		}
	} else {
		// JSON output
		reportsByFile := make(map[string][]queryReport, len(resultsByFile))
		for filename, fileResults := range resultsByFile {
			reports := make([]queryReport, 0, len(fileResults))
			for _, res := range fileResults {
				reports = append(reports, newQueryReport(res))
			}
			reportsByFile[filename] = reports
		}
		d, err := json.Marshal(reportsByFile)
		if err != nil {
			logger.Error("Error marshalling results to JSON", zap.Error(err))
			return
		}
		if jsonOutput == "" {
			fmt.Println(string(d))
		} else {
			f, err := os.Create(jsonOutput)
			if err != nil {
				logger.Error("Error creating JSON output file", zap.Error(err))
				return
			}
			defer f.Close()
			_, err = f.Write(d)
			if err != nil {
				logger.Error("Error writing JSON output file", zap.Error(err))
				return
			}
		}
	}
}

func renderResult(res ksym.Result) string {
	var b strings.Builder
	if res.Label != "" {
		fmt.Fprintf(&b, "query #%d %s\n", res.Index, res.Label)
	} else {
		fmt.Fprintf(&b, "query #%d\n", res.Index)
	}
	switch res.Kind {
	case ksym.KindCeil:
		b.WriteString(formatter.FormatForm(res.Ceil))
	case ksym.KindUnify:
		b.WriteString(formatter.FormatResult(res.Unification))
	}
	return b.String()
}

// queryReport is the JSON view of one answered query.
type queryReport struct {
	Label       string                       `json:"label,omitempty"`
	Index       int                          `json:"index"`
	Kind        string                       `json:"kind"`
	Ceil        formatter.FormReport         `json:"ceil,omitempty"`
	Unification *formatter.UnificationReport `json:"unification,omitempty"`
}

func newQueryReport(res ksym.Result) queryReport {
	report := queryReport{Label: res.Label, Index: res.Index, Kind: res.Kind}
	switch res.Kind {
	case ksym.KindCeil:
		report.Ceil = formatter.NewFormReport(res.Ceil)
	case ksym.KindUnify:
		unification := formatter.NewUnificationReport(res.Unification)
		report.Unification = &unification
	}
	return report
}

// countFailures counts negative answers: failed unifications and
// unsatisfiable definedness conditions.
func countFailures(results []ksym.Result) int {
	n := 0
	for _, res := range results {
		switch res.Kind {
		case ksym.KindCeil:
			if res.Ceil.IsBottom() {
				n++
			}
		case ksym.KindUnify:
			switch res.Unification.(type) {
			case unify.Failed, unify.SortError:
				n++
			}
		}
	}
	return n
}

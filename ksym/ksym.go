// Package ksym is the public facade over the symbolic execution
// backend: it loads a definition snapshot from a YAML configuration,
// builds the definedness and unification services, and processes
// KORE-JSON query files concurrently.
package ksym

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/korelang/ksym/internal/ceil"
)

const maxShowRecentFiles = 25

// QueryEngine is the part of the engine the processing helpers need.
type QueryEngine interface {
	RunFile(path string) ([]Result, error)
	RunSource(source []byte) ([]Result, error)
	RunQuery(q Query) (Result, error)
}

// New builds an engine from the configuration file at
// configurationPath.
func New(configurationPath string) (*Engine, error) {
	config, err := parseConfigurationFile(configurationPath)
	if err != nil {
		return nil, err
	}

	logger, err := buildLogger(config.LogLevel)
	if err != nil {
		return nil, err
	}

	return NewEngine(config, logger)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine QueryEngine,
	sources [][]byte,
	processor func(QueryEngine, []byte) ([]Result, error),
) ([]Result, error) {
	var allResults []Result
	for i, source := range sources {
		results, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine QueryEngine,
	paths []string,
	processor func(QueryEngine, string) ([]Result, error),
) ([]Result, error) {
	var allResults []Result
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}

func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine QueryEngine,
	path string,
	processor func(QueryEngine, string) ([]Result, error),
) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	var results []Result
	if info.IsDir() {
		var files []string
		err := filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fileInfo.IsDir() && hasDesiredExtension(filePath) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}

		// mutex for recent files
		var recentFilesMutex sync.Mutex
		recentFiles := make([]string, maxShowRecentFiles)

		// make space for recent files
		for i := 0; i < maxShowRecentFiles+1; i++ {
			fmt.Println()
		}
		fmt.Printf("\033[%dA", maxShowRecentFiles+1)

		// one outcome per file, so a failed file cannot desync the
		// collection loop
		type fileOutcome struct {
			results []Result
			err     error
		}
		outcomeChan := make(chan fileOutcome, len(files))

		// limit the number of workers
		maxWorkers := runtime.NumCPU()
		sem := make(chan struct{}, maxWorkers)

		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription(path),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))

		// update recent files
		updateRecentFiles := func(filename string) {
			recentFilesMutex.Lock()
			defer recentFilesMutex.Unlock()

			// update the list
			for j := maxShowRecentFiles - 1; j > 0; j-- {
				recentFiles[j] = recentFiles[j-1]
			}
			recentFiles[0] = filename

			// move the cursor up
			fmt.Printf("\033[%dA", maxShowRecentFiles)

			// print the list
			for j := range recentFiles {
				if recentFiles[j] != "" {
					// \033[2k: clear the line
					// \r: move the cursor to the beginning of the line
					fmt.Printf("\033[2K\r%s\n", recentFiles[j])
				} else {
					fmt.Printf("\033[2K\r\n")
				}
			}
		}

		// for each file, run a goroutine
		for _, filePath := range files {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
				sem <- struct{}{}
				go func(fp string) {
					defer func() { <-sem }()

					// show the start of file processing
					updateRecentFiles(filepath.Base(fp))

					fileResults, err := processor(engine, fp)
					if err != nil && logger != nil {
						logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
					}
					outcomeChan <- fileOutcome{results: fileResults, err: err}
					bar.Add(1)
				}(filePath)
			}
		}

		// collect all results; failed files were already logged and
		// contribute nothing
		for range files {
			outcome := <-outcomeChan
			if outcome.err != nil {
				continue
			}
			results = append(results, outcome.results...)
		}

		fmt.Println()
		return results, nil
	} else if hasDesiredExtension(path) {
		fileResults, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		results = append(results, fileResults...)
	}

	return results, nil
}

func ProcessFile(engine QueryEngine, filePath string) ([]Result, error) {
	return engine.RunFile(filePath)
}

func ProcessSource(engine QueryEngine, source []byte) ([]Result, error) {
	return engine.RunSource(source)
}

var desiredExtensions = map[string]bool{
	".json": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

// Config represents the .ksym.yaml tool configuration.
type Config struct {
	Name string `yaml:"name"`
	// Definition is the path of the KORE-JSON definition snapshot.
	Definition string `yaml:"definition"`
	// Oracle is the path of the native simplifier library. Empty means
	// no oracle.
	Oracle string `yaml:"oracle,omitempty"`
	// Disable lists definedness strategies to switch off, by name.
	Disable []string `yaml:"disable,omitempty"`
	// LogLevel is a zap level name; empty means the production default.
	LogLevel string `yaml:"log-level,omitempty"`
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	var config Config

	// Read the configuration file
	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	// Parse the configuration file
	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&config)
	if err != nil {
		return config, err
	}

	if err := validateConfig(config); err != nil {
		return config, err
	}

	return config, nil
}

func validateConfig(config Config) error {
	if config.Definition == "" {
		return fmt.Errorf("ksym: config is missing the definition path")
	}

	known := make(map[string]bool)
	for _, name := range ceil.StrategyNames() {
		known[name] = true
	}
	for _, name := range config.Disable {
		if !known[name] {
			return fmt.Errorf("ksym: config disables unknown strategy %q (known: %s)",
				name, strings.Join(ceil.StrategyNames(), ", "))
		}
	}
	return nil
}

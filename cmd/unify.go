package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/korelang/ksym/ksym"
)

var (
	unifyJsonOutput bool
	unifyOutPath    string
)

var unifyCmd = &cobra.Command{
	Use:   "unify <left.json> <right.json>",
	Short: "Unify two KORE-JSON terms",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println("error: Please provide exactly two term files")
			os.Exit(1)
		}

		engine, err := ksym.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to initialize query engine", zap.Error(err))
		}
		defer engine.Close()

		runUnifyPair(logger, engine, args[0], args[1], unifyJsonOutput, unifyOutPath)
	},
}

func init() {
	unifyCmd.Flags().BoolVar(&unifyJsonOutput, "json", false, "Output the result in JSON format")
	unifyCmd.Flags().StringVarP(&unifyOutPath, "output", "o", "", "Output path (when using JSON)")
}

func runUnifyPair(logger *zap.Logger, engine ksym.QueryEngine, leftPath, rightPath string, isJson bool, jsonOutput string) {
	left, err := os.ReadFile(leftPath)
	if err != nil {
		logger.Error("Error reading term file", zap.String("file", leftPath), zap.Error(err))
		os.Exit(1)
	}
	right, err := os.ReadFile(rightPath)
	if err != nil {
		logger.Error("Error reading term file", zap.String("file", rightPath), zap.Error(err))
		os.Exit(1)
	}

	res, err := engine.RunQuery(ksym.Query{
		Kind:  ksym.KindUnify,
		Label: fmt.Sprintf("%s =? %s", filepath.Base(leftPath), filepath.Base(rightPath)),
		Left:  left,
		Right: right,
	})
	if err != nil {
		logger.Error("Error unifying terms", zap.Error(err))
		os.Exit(1)
	}

	printResults(logger, []ksym.Result{res}, isJson, jsonOutput)

	if countFailures([]ksym.Result{res}) > 0 {
		os.Exit(1)
	}
}

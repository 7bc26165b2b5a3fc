package main

import (
	"os"

	"github.com/korelang/ksym/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

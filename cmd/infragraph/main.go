// Command infragraph infers cross-host relationships in an infrastructure
// document store and validates the resulting graph.
//
// Usage:
//
//	infragraph [flags] <command>
//
// Commands:
//
//	process  - Infer DNS/proxy/service relationships and write them back
//	validate - Check relationship structure, pairing and references
//	watch    - Re-run processing whenever the store is rewritten
//	serve    - HTTP API with SSE events and Prometheus metrics
//	convert  - Copy a store between JSON, YAML and SQLite backends
//	config   - Write, show or locate the configuration file
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

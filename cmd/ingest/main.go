// Command ingest converts a raw postal/administrative dataset (CSV or
// JSON) into the canonical location hierarchy and writes it as a flat JSON
// array.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/aliases"
	"inmuebles-portal/internal/ingest"
)

func main() {
	var (
		inputPath   = flag.String("input", "", "postal dataset (.csv or .json), required")
		citiesPath  = flag.String("cities", "", "optional population gazetteer (.json)")
		aliasesPath = flag.String("aliases", "", "optional alias table (.yaml), defaults built in")
		outPath     = flag.String("out", "", "output file, stdout when empty")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if *inputPath == "" {
		logger.Fatal("--input is required")
	}

	rows, err := ingest.ReadRows(*inputPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to read input dataset")
	}

	gazetteer, err := ingest.ReadGazetteer(*citiesPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to read gazetteer")
	}

	table, err := aliases.Load(*aliasesPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load alias table")
	}

	result := ingest.NewPipeline(table, logger).Run(rows, gazetteer)

	output, err := json.MarshalIndent(result.Records, "", "  ")
	if err != nil {
		logger.WithError(err).Fatal("failed to encode records")
	}

	if *outPath == "" {
		os.Stdout.Write(output)
		os.Stdout.Write([]byte("\n"))
	} else if err := os.WriteFile(*outPath, output, 0644); err != nil {
		logger.WithError(err).Fatal("failed to write output")
	}

	logger.WithFields(logrus.Fields{
		"rows":    len(rows),
		"records": len(result.Records),
		"skipped": result.Skipped,
	}).Info("ingestion completed")
}

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/andrewlalis/airsearch/config"
	"github.com/andrewlalis/airsearch/internal/airports"
	"github.com/andrewlalis/airsearch/internal/engine"
	"github.com/andrewlalis/airsearch/internal/metrics"
	"github.com/andrewlalis/airsearch/internal/searcher"
)

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		csvPath    = flag.String("csv", "airports.csv", "Path to the airports CSV dataset")
		indexDir   = flag.String("index-dir", "./airports-index", "Directory holding the persisted index")
		schemaPath = flag.String("schema", "", "Optional YAML schema file (defaults to the built-in airport schema)")
		rebuild    = flag.Bool("rebuild", false, "Rebuild the index even if one already exists")
		topK       = flag.Int("top-k", searcher.DefaultTopK, "Number of results to show per query")
		logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *help {
		fmt.Printf("airsearch - full-text airport search\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		return
	}

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	log := logrus.WithField("component", "airsearch")

	schema := config.AirportSchema()
	if *schemaPath != "" {
		schema, err = config.LoadSchema(*schemaPath)
		if err != nil {
			log.Fatalf("Failed to load schema: %v", err)
		}
	}

	eng, err := engine.New(engine.Config{
		Schema:   schema,
		IndexDir: *indexDir,
		Logger:   log,
		Metrics:  metrics.New(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	if *rebuild || !eng.Exists() {
		records, err := airports.ParseFile(*csvPath)
		if err != nil {
			log.Fatalf("Failed to read airports: %v", err)
		}
		log.Infof("Read %d airports", len(records))
		if err := eng.BuildIndex(records); err != nil {
			log.Fatalf("Failed to build index: %v", err)
		}
	}

	fmt.Println("Entering search mode. Type a query, or 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := scanner.Text()
		if query == "exit" {
			break
		}
		result, err := eng.SearchTopK(query, *topK)
		if err != nil {
			log.Errorf("Search failed: %v", err)
			continue
		}
		for i, hit := range result.Hits {
			fmt.Printf("  %d. %s\n", i+1, hit.Name)
		}
	}
	fmt.Println("Done!")
}

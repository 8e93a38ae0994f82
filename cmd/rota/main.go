package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rota/internal/app"
	"github.com/ternarybob/rota/internal/common"
	"github.com/ternarybob/rota/internal/models"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths // Multiple -config flags supported
	question     = flag.String("q", "", "Ask a single question and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Rota version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Initialize logger
	// 3. Print banner
	// 4. Provider health check before accepting queries
	if len(configFiles) == 0 {
		if _, err := os.Stat("rota.toml"); err == nil {
			configFiles = append(configFiles, "rota.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// A failing provider check blocks the session: without a working model
	// the assistant can only ever echo error messages.
	if err := application.HealthCheck(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Language model provider is not available")
	}

	if *question != "" {
		ask(ctx, application, *question)
		return
	}

	if !config.App.Interactive {
		fmt.Println("Interactive mode is disabled; pass -q \"your question\" to ask a single question.")
		return
	}

	runREPL(ctx, application)
}

// runREPL reads questions from stdin until EOF, interrupt, or "exit".
func runREPL(ctx context.Context, application *app.App) {
	fmt.Println("Ask a question about a car brand or model (\"exit\" to quit).")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}

		ask(ctx, application, line)
	}
}

// ask runs one question through retrieval and answering and prints the
// answer with its citation.
func ask(ctx context.Context, application *app.App, query string) {
	retrieved, err := application.Retrieve(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("Retrieval interrupted")
		return
	}

	answerText, cited := application.Answer(ctx, query, retrieved)

	fmt.Println()
	fmt.Println(answerText)
	printCitation(cited)
	fmt.Println()
}

// printCitation shows where the answer was grounded: article title, URL,
// and the leading infobox facts.
func printCitation(cited *models.Context) {
	if cited == nil {
		return
	}

	fmt.Println()
	fmt.Printf("Source: %s\n", cited.Title)
	fmt.Printf("        %s\n", cited.URL)

	keys := cited.Infobox.Keys()
	const maxFacts = 5
	if len(keys) > maxFacts {
		keys = keys[:maxFacts]
	}
	for _, key := range keys {
		value, _ := cited.Infobox.Get(key)
		fmt.Printf("        %s: %s\n", key, value)
	}
}

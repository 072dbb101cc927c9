package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"legal-doc-assistant/internal/analysis"
	"legal-doc-assistant/internal/config"
	"legal-doc-assistant/internal/db"
	"legal-doc-assistant/internal/embedding"
	"legal-doc-assistant/internal/llmservice"
	"legal-doc-assistant/internal/rag"
	"legal-doc-assistant/internal/server"
	"legal-doc-assistant/internal/textstore"
	"legal-doc-assistant/internal/vectorindex"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Optional .env for local development; config values may reference
	// environment variables.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bunDB := db.NewDB(db.ConnectDB(&cfg.Database), cfg.Database.Debug)
	defer bunDB.Close()
	if err := db.InitDB(ctx, bunDB); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}

	texts, err := textstore.NewStore(cfg.Storage.CacheDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating text store")
	}
	cache, err := vectorindex.NewCache(cfg.Storage.VectorDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating index cache")
	}

	// Model handles are created once here and injected everywhere.
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	completer, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing llm client")
	}

	builder := vectorindex.NewBuilder(cache, texts, embedder, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	composer := rag.NewComposer(builder, vectorindex.NewRetriever(embedder), completer, &cfg.RAG)
	analyzer := analysis.NewExtractor(texts, completer, &cfg.RAG)

	srv := server.New(cfg, bunDB, texts, analyzer, composer)
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/planforge/planforge/internal/factstore"
	"github.com/planforge/planforge/internal/httpapi"
	"github.com/planforge/planforge/internal/llm"
	"github.com/planforge/planforge/internal/marketintel"
	"github.com/planforge/planforge/internal/plangen"
	"github.com/planforge/planforge/internal/websearch"
)

func main() {
	_ = godotenv.Load()

	dbFlag := flag.String("db", "", "path to SQLite facts database (overrides DB_PATH env var)")
	addrFlag := flag.String("addr", "", "listen address (overrides PORT env var)")
	flag.Parse()

	addr := *addrFlag
	if addr == "" {
		addr = ":8080"
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing := setupTracing(ctx)
	defer shutdownTracing()

	gateway, err := buildGateway()
	if err != nil {
		log.Fatal(err)
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = os.Getenv("DB_PATH")
	}
	if dbPath == "" {
		dbPath = "./data/facts.db"
	}
	facts, err := factstore.Open(dbPath)
	if err != nil {
		log.Fatalf("open facts database (%s): %v", dbPath, err)
	}
	defer facts.Close()
	if err := facts.Seed(ctx); err != nil {
		log.Fatalf("seed facts database: %v", err)
	}

	searcher := websearch.NewClient(websearch.Config{
		APIKey:   os.Getenv("SEARCH_API_KEY"),
		EngineID: os.Getenv("SEARCH_ENGINE_ID"),
	})
	if !searcher.Configured() {
		log.Print("web search not configured; plans will use heuristic market data only")
	}

	var marketProvider marketintel.Provider
	if hp := marketintel.NewHTTPProvider(marketintel.ProviderConfig{
		APIKey:  os.Getenv("MARKET_DATA_API_KEY"),
		BaseURL: os.Getenv("MARKET_DATA_API_URL"),
	}); hp.Configured() {
		marketProvider = hp
	} else {
		log.Print("market data provider not configured; market sizing falls back to industry profiles")
	}

	orch := plangen.NewOrchestrator(gateway, searcher, facts, marketProvider)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpapi.NewServer(orch),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("planservd listening on %s (facts db=%s)", addr, dbPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// buildGateway assembles the ordered provider chain from whatever keys
// are present. Anthropic leads when both are configured; at least one
// provider is mandatory.
func buildGateway() (*llm.Gateway, error) {
	var providers []llm.Provider
	if strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")) != "" {
		p, err := llm.NewAnthropicProviderFromEnv()
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) != "" {
		p, err := llm.NewOpenAIProviderFromEnv()
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, errors.New("set ANTHROPIC_API_KEY or OPENAI_API_KEY; at least one completion provider is required")
	}
	return llm.NewGateway(providers...)
}

// setupTracing installs an OTLP trace exporter when an endpoint is
// configured; otherwise spans stay on the default no-op provider.
func setupTracing(ctx context.Context) func() {
	if strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) == "" {
		return func() {}
	}
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		log.Printf("otlp exporter disabled: %v", err)
		return func() {}
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("planservd"),
	))
	if err != nil {
		res = resource.Default()
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.Printf("trace shutdown: %v", err)
		}
	}
}

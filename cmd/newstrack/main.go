package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/newstrack/newstrack"
	"github.com/newstrack/newstrack/browser"
	"github.com/newstrack/newstrack/config"
	"github.com/newstrack/newstrack/extract"
	"github.com/newstrack/newstrack/feedprobe"
	"github.com/newstrack/newstrack/fetch"
	"github.com/newstrack/newstrack/locator"
	"github.com/newstrack/newstrack/store"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	poolSize := flag.Int("browsers", 0, "headless browser pool size (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *poolSize > 0 {
		cfg.Browser.PoolSize = *poolSize
	}

	st, err := store.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", cfg.Database.Path, err)
	}
	defer st.Close()

	pool := browser.NewPool(cfg.Browser.PoolSize)
	if err := pool.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start browser pool: %v", err)
	}
	defer pool.Shutdown()

	extractor := extract.New(fetch.New(), newstrack.NewPoolSession(pool))
	pipeline := newstrack.NewPipeline(locator.New(), extractor, feedprobe.New(), st)

	cache := newstrack.NewResultCache(cfg.Cache.TTL)
	server := newstrack.NewAPIServer(pipeline, st, cache, cfg.Scrape.RequestTimeout)

	// Shut the browser pool and store down on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("INFO: Received %s, shutting down", sig)
		pool.Shutdown()
		st.Close()
		os.Exit(0)
	}()

	log.Printf("INFO: Starting journalist tracker on %s (db=%s, browsers=%d)",
		cfg.Server.Addr, cfg.Database.Path, cfg.Browser.PoolSize)
	if err := server.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

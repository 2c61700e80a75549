package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"aurabags-storefront/internal/config"
	"aurabags-storefront/internal/handoff"
	"aurabags-storefront/internal/importer"
	cartrepo "aurabags-storefront/internal/repository/cart"
	"aurabags-storefront/internal/repository/kv"
	"aurabags-storefront/internal/service/anonymous"
	cartsvc "aurabags-storefront/internal/service/cart"
	"aurabags-storefront/internal/storage"
)

func main() {
	var filePath, token string
	flag.StringVar(&filePath, "file", "", "Path to a CSV of cart selections")
	flag.StringVar(&token, "token", "", "Session token whose cart receives the rows; a new session is started when empty")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	sessions := anonymous.New(kv.NewJSON(store, logger), cfg.SessionTTL)
	var sessionID string
	if token == "" {
		token, sessionID, err = sessions.Issue(ctx)
	} else {
		sessionID, err = sessions.LookupByToken(ctx, token)
	}
	if err != nil {
		log.Fatalf("resolve session: %v", err)
	}

	values := kv.NewJSON(kv.Prefixed(store, anonymous.Namespace(sessionID)), logger)
	local := cartsvc.NewLocal(ctx, cartrepo.NewKV(values), logger)
	cart := cartsvc.New(local, nil, nil, logger)

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	start := time.Now()
	count, result, err := importer.NewCSVImporter(f, cart).Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d rows into the guest cart (%d items, %s) in %s\n",
		count, result.TotalItems(), handoff.FormatCents(result.TotalCents()), time.Since(start).Truncate(time.Millisecond))
	fmt.Printf("Session token: %s\n", token)
}

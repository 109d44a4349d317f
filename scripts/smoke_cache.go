//go:build integration
// +build integration

package scripts

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ZanzyTHEbar/toon-cache/tcache/cache"
	"github.com/ZanzyTHEbar/toon-cache/tcache/config"
	"github.com/ZanzyTHEbar/toon-cache/tcache/db"

	"github.com/rs/zerolog"
)

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

// RunSmokeCache executes a cache round trip against an embedded store.
func RunSmokeCache() {
	fmt.Println("Smoke test: cartoon cache round trip")
	tmp := "./smoke.db"
	defer os.Remove(tmp)

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	mgr, err := db.NewManager(config.StoreConfig{URL: "file:" + tmp}, logger)
	must(err, "manager")
	defer mgr.Close()

	svc := cache.NewService(mgr, cache.NewLRUCache(16), 60, logger)
	ctx := context.Background()

	// Miss before store
	if _, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u1"); err != nil || ok {
		log.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	fmt.Println("OK: miss on empty store")

	must(svc.Store(ctx, "a cat", "https://x/1.png", "cartoon", "u1"), "store")
	fmt.Println("OK: store")

	url, ok, err := svc.Lookup(ctx, "a cat", "cartoon", "u1")
	must(err, "lookup")
	if !ok || url != "https://x/1.png" {
		log.Fatalf("lookup returned ok=%v url=%q", ok, url)
	}
	fmt.Println("OK: hit after store")

	// Anonymous path is separate from owned entries
	must(svc.StoreAnonymous(ctx, "a cat", "https://x/anon.png", "cartoon"), "store anonymous")
	url, ok, err = svc.Lookup(ctx, "a cat", "cartoon", "")
	must(err, "anonymous lookup")
	if !ok || url != "https://x/anon.png" {
		log.Fatalf("anonymous lookup returned ok=%v url=%q", ok, url)
	}
	fmt.Println("OK: anonymous entries isolated")

	fmt.Println("Smoke test passed")
}

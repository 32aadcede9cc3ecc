/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/TraceApi/roastery-core/internal/platform/cache"
	"github.com/TraceApi/roastery-core/internal/transport/rest/middleware"
)

func main() {
	viewerID := flag.String("viewer", "partner-001", "The viewer ID to associate with this key")
	register := flag.Bool("register", false, "store the key hash in Redis right away")
	revoke := flag.String("revoke", "", "revoke this raw API key instead of generating one")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fail("Error loading config:", err)
	}
	ctx := context.Background()

	if *revoke != "" {
		store := cache.NewRedisStore(cfg.RedisAddr)
		defer store.Close()
		found, err := store.RevokeKey(ctx, middleware.HashAPIKey(*revoke))
		if err != nil {
			fail("Error revoking key:", err)
		}
		if !found {
			fmt.Println("Key was not registered.")
			return
		}
		fmt.Println("Key revoked.")
		return
	}

	// 1. Generate a random 32-byte key
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		fail("Error generating random bytes:", err)
	}
	apiKey := middleware.APIKeyPrefix + hex.EncodeToString(raw)
	apiKeyHash := middleware.HashAPIKey(apiKey)

	// 2. Optionally register it
	if *register {
		store := cache.NewRedisStore(cfg.RedisAddr)
		defer store.Close()
		if err := store.RegisterKey(ctx, apiKeyHash, *viewerID); err != nil {
			fail("Error registering key:", err)
		}
	}

	// 3. Output
	fmt.Println("=== New API Key Generated ===")
	fmt.Printf("Raw API Key (Client Use): %s\n", apiKey)
	fmt.Printf("Viewer ID:                %s\n", *viewerID)
	if !*register {
		fmt.Println("\n=== Redis Setup Command ===")
		fmt.Printf("SET roastery:auth:apikey:%s \"%s\"\n", apiKeyHash, *viewerID)
	}
	fmt.Println("\n=== Curl Example ===")
	fmt.Printf("curl -H \"Authorization: Bearer %s\" %s/r/<batch-code>\n", apiKey, cfg.PublicBaseURL)
}

func fail(msg string, err error) {
	fmt.Fprintln(os.Stderr, msg, err)
	os.Exit(1)
}

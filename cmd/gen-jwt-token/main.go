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
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

func main() {
	subject := flag.String("sub", "roaster-001", "operator id to put in the subject claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// Signed with JWT_SECRET, the same secret the API verifies with.
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *subject,
		"exp": now.Add(*ttl).Unix(),
		"iat": now.Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Generated JWT Token:")
	fmt.Println(tokenString)
	fmt.Println("\nCurl Command:")
	fmt.Printf("curl -H \"Authorization: Bearer %s\" http://localhost:%s/v1/reports/dashboard\n", tokenString, cfg.Port)
}

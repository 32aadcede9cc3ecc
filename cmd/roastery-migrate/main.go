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
	"flag"
	"fmt"
	"os"

	"github.com/TraceApi/roastery-core/internal/config"
	"github.com/TraceApi/roastery-core/internal/platform/storage/postgres"
)

func main() {
	envFile := flag.String("env", "", "optional .env file to load")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: roastery-migrate [-env file] up|down|status")
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := postgres.Migrate(context.Background(), cfg.DatabaseURL, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

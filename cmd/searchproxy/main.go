// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the Thai-aware search proxy.
//
// It wires the Dictionary Store, Tokenizer Registry, Config Manager,
// result Cache, Metrics & Health, and Search Proxy Service together,
// starts the HTTP API, and manages graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"searchproxy/internal/api"
	"searchproxy/internal/applog"
	"searchproxy/internal/config"
	"searchproxy/internal/dictionary"
	"searchproxy/internal/metrics"
	"searchproxy/internal/proxy"
	"searchproxy/internal/tokenize"
)

func main() {
	httpAddr := flag.String("http_addr", ":8080", "HTTP listen address")
	dictionaryPath := flag.String("dictionary_path", "", "Path to the compound-word dictionary JSON file")
	rankingConfigPath := flag.String("ranking_config", "", "Optional YAML file with ranking boost/threshold overrides")
	cacheAddr := flag.String("redis_addr", "", "If non-empty, back the result cache with Redis at this address instead of in-memory")
	logStyle := flag.String("log_style", string(applog.StyleTerminal), "Logger style: terminal, json, or noop")
	logLevel := flag.String("log_level", "info", "Logger level: debug, info, warn, error")
	flag.Parse()

	logger, err := applog.New(applog.Config{Style: applog.Style(*logStyle), Level: *logLevel})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	loader := config.Loader(config.Sources{
		RankingConfigPath: *rankingConfigPath,
		Env:               environMap(),
	})
	cfgMgr, err := config.New(loader, logger)
	if err != nil {
		log.Fatalf("config init: %v", err)
	}
	snap := cfgMgr.Current()
	if *dictionaryPath != "" {
		snap.DictionaryPath = *dictionaryPath
	}
	if snap.EnableHotReload {
		watchPaths := []string{}
		if *rankingConfigPath != "" {
			watchPaths = append(watchPaths, *rankingConfigPath)
		}
		if len(watchPaths) > 0 {
			if err := cfgMgr.WatchFiles(watchPaths...); err != nil {
				logger.Warn("failed to start config file watch", zap.Error(err))
			}
		}
	}

	dict := dictionary.New(logger)
	if snap.DictionaryPath != "" {
		if err := dict.ReloadFrom(snap.DictionaryPath); err != nil {
			logger.Warn("initial dictionary load failed, starting empty", zap.Error(err))
		}
	}

	registry := tokenize.NewRegistry()

	var cache proxy.Cache
	if *cacheAddr != "" {
		cache = proxy.NewRedisCache(*cacheAddr)
	} else {
		cache = proxy.NewMemoryCache()
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc := proxy.New(cfgMgr, dict, registry, cache, m, logger)

	health := metrics.NewHealth(map[string]metrics.ComponentCheck{
		"dictionary": func() (metrics.State, string) {
			if dict.Len() == 0 {
				return metrics.Degraded, "dictionary is empty"
			}
			return metrics.Healthy, ""
		},
		"config": func() (metrics.State, string) {
			if err := cfgMgr.Current().Validate(); err != nil {
				return metrics.Unhealthy, err.Error()
			}
			return metrics.Healthy, ""
		},
	})

	apiServer := api.NewServer(svc, health, logger)

	// Built here rather than via apiServer.ListenAndServe so shutdown can
	// hold a reference to the *http.Server for a graceful Shutdown call.
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:         *httpAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("search proxy listening", zap.String("addr", *httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		logger.Fatal("http server exited unexpectedly", zap.Error(err))
	}

	cfgMgr.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	fmt.Println("search proxy stopped")
}

// environMap turns os.Environ() into the map[string]string shape
// config.FromEnv expects.
func environMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			out[parts[0]] = parts[1]
		}
	}
	return out
}

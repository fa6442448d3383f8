// Copyright 2025 Zintix Labs
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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zintix-labs/colab/server"
	"github.com/zintix-labs/colab/server/logger"
	"github.com/zintix-labs/colab/server/svrcfg"
)

func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	err = server.Run(context.Background(), sCfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr        string
	LogMode     string
	MaxScan     uint64
	ScanTimeout time.Duration
	Workers     int
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.Uint64Var(&cfg.MaxScan, "max-scan", svrcfg.DefaultMaxScan, "max seeds per /v1/scan request")
	flag.DurationVar(&cfg.ScanTimeout, "scan-timeout", svrcfg.DefaultScanTimeout, "timeout per /v1/scan request")
	flag.IntVar(&cfg.Workers, "workers", 0, "scan workers per request (0 = GOMAXPROCS)")
	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, mode)
	sCfg := &svrcfg.SvrCfg{
		Log:         log,
		Addr:        cfg.Addr,
		MaxScan:     cfg.MaxScan,
		ScanTimeout: cfg.ScanTimeout,
		Workers:     cfg.Workers,
	}
	return sCfg, ah.Close, nil
}

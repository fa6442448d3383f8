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

package svrcfg

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/server/logger"
)

const (
	DefaultMaxScan     uint64 = 1 << 24
	DefaultScanTimeout        = 30 * time.Second
	DefaultMaxBody            = 4 << 20
)

type SvrCfg struct {
	Log  *slog.Logger
	Addr string

	// 單次 POST /v1/scan 可掃描的種子數上限
	MaxScan     uint64
	ScanTimeout time.Duration
	Workers     int

	// POST /v1/rederive、/v1/summary 的 body 上限（bytes）
	MaxBody int64
}

// Valid 補齊預設值並檢查依賴，Run 之前必須呼叫
func (sc *SvrCfg) Valid() error {
	if sc == nil {
		return errs.NewFatal("server config is required")
	}
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	if sc.MaxScan == 0 {
		sc.MaxScan = DefaultMaxScan
	}
	if sc.ScanTimeout <= 0 {
		sc.ScanTimeout = DefaultScanTimeout
	}
	if sc.Workers < 1 {
		sc.Workers = runtime.GOMAXPROCS(0)
	}
	if sc.MaxBody < 1 {
		sc.MaxBody = DefaultMaxBody
	}
	return nil
}

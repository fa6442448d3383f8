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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zintix-labs/colab"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/server/api"
	"github.com/zintix-labs/colab/server/app"
	"github.com/zintix-labs/colab/server/netsvr"
	"github.com/zintix-labs/colab/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口：
//  1. 驗證 SvrCfg 並補齊預設值。
//  2. 以 sCfg.Addr 建立 chi server（空字串用 :5808）。
//  3. 註冊 middleware 與路由。
//  4. 交給 app 管理生命週期，直到 ctx 結束或收到終止訊號。
//
// 所有依賴都透過 SvrCfg 注入，不讀檔案或環境變數。
func Run(ctx context.Context, sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// logger 可能不可用，直接寫 stderr
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	to := netsvr.DefaultTimeouts
	to.Write = max(to.Write, sCfg.ScanTimeout+5*time.Second)
	return RunWithSvr(ctx, sCfg, netsvr.NewChiServer(sCfg.Addr, to))
}

// RunWithSvr 與 Run 相同，但由呼叫端注入 NetSvr（自訂 listener、逾時或其他 adapter）。
//
// 若注入的是 *netsvr.ChiAdapter，必須 Ready()。
func RunWithSvr(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return errs.Wrap(err, "register routes failed")
	}

	a := app.New(app.WithLogger(sCfg.Log))
	a.Register(svr)
	sCfg.Log.Info("[colab] listening",
		slog.String("addr", svr.Address()),
		slog.String("version", colab.Version),
		slog.Uint64("max_scan", sCfg.MaxScan),
		slog.Int("workers", sCfg.Workers),
	)
	if err := a.Run(ctx); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[colab] stopped")
	return nil
}

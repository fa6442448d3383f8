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

package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/colab/server/api/v1"
	"github.com/zintix-labs/colab/server/netsvr"
	"github.com/zintix-labs/colab/server/netsvr/middleware"
	"github.com/zintix-labs/colab/server/svrcfg"
)

const indexText = `colab CO room lab
GET  /v1/version
GET  /v1/seeds/{seed}
GET  /v1/seeds/{seed}/levels    ?theme=<name>
GET  /v1/levels/{state}         ?level=N&dark=bool
POST /v1/scan       JSON scan setting, ?format=csv
POST /v1/rederive   seed lines -> CSV with theme counts
POST /v1/summary    result CSV -> distribution summary, ?format=yaml
`

// RegisterRoutes 註冊 middleware 與全部路由；sCfg 必須已通過 Valid
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	svr.Get("/", index)               // 2. 註冊主頁
	return registerV1API(svr, sCfg)   // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(indexText))
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	s, err := v1.NewScanHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/version", v1.Version)
		vOne.Get("/seeds/{seed}", v1.Seed)
		vOne.Get("/seeds/{seed}/levels", v1.Levels)
		vOne.Get("/levels/{state}", v1.Reroll)

		vOne.Post("/scan", s.Scan)
		vOne.Post("/rederive", s.Rederive)
		vOne.Post("/summary", s.Summary)
	})
	return nil
}

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

package v1

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/colab"
	"github.com/zintix-labs/colab/csvio"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/scancfg"
	"github.com/zintix-labs/colab/server/httperr"
	"github.com/zintix-labs/colab/server/svrcfg"
	"github.com/zintix-labs/colab/stats"
)

// ScanHandler 範圍掃描、批次重算與分布摘要
type ScanHandler struct {
	cfg      *svrcfg.SvrCfg
	searcher *colab.Searcher
}

func NewScanHandler(sCfg *svrcfg.SvrCfg) (*ScanHandler, error) {
	if sCfg == nil || sCfg.Log == nil {
		return nil, errs.NewFatal("validated server config is required")
	}
	return &ScanHandler{
		cfg:      sCfg,
		searcher: colab.NewSearcher(colab.WithLogger(sCfg.Log)),
	}, nil
}

// ScanResponse POST /v1/scan
type ScanResponse struct {
	Result   colab.SearchResult `json:"result"`
	UsedTime int64              `json:"used_ms"`
}

// Scan 以 JSON 掃描設定執行範圍掃描。?format=csv 時回傳 SEED,COUNT 列。
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	set, err := scancfg.GetScanSettingByJSON(body)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if n := set.Seeds(); n > h.cfg.MaxScan {
		httperr.Errs(w, errs.NewWithExtra(errs.Warn, "scan range too large",
			strconv.FormatUint(n, 10)+" > "+strconv.FormatUint(h.cfg.MaxScan, 10)))
		return
	}
	set.Workers = h.cfg.Workers

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ScanTimeout)
	defer cancel()

	res, used, err := h.searcher.SearchMP(ctx, set)
	if err != nil {
		httperr.Log(h.cfg.Log, "scan failed", err)
		httperr.Errs(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		var buf bytes.Buffer
		if err := res.WriteCSV(&buf); err != nil {
			httperr.Errs(w, err)
			return
		}
		writeCSV(w, buf.Bytes())
		return
	}
	writeJSON(w, ScanResponse{Result: res, UsedTime: used.Milliseconds()})
}

// Rederive body 為每行一個種子，回傳含主題直方圖的 CSV。
func (h *ScanHandler) Rederive(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	// 先寫進 buffer，避免寫到一半才出錯而無法改狀態碼
	var buf bytes.Buffer
	if _, err := h.searcher.Rederive(r.Context(), bytes.NewReader(body), &buf); err != nil {
		httperr.Errs(w, err)
		return
	}
	writeCSV(w, buf.Bytes())
}

// Summary body 為結果 CSV（SEED,COUNT[,h0..h7]），回傳分布摘要。?format=yaml 改以 YAML 輸出。
func (h *ScanHandler) Summary(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rows, err := csvio.ReadRows(bytes.NewReader(body))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sum, err := stats.Summarize(rows)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	render, ok := stats.RenderFor(format)
	if !ok {
		httperr.Errs(w, errs.NewWithExtra(errs.Warn, "unknown format (json|yaml)", format))
		return
	}
	var buf bytes.Buffer
	if err := sum.WriteWith(&buf, render); err != nil {
		httperr.Errs(w, errs.Wrap(err, "render summary failed"))
		return
	}
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/yaml")
	}
	_, _ = w.Write(buf.Bytes())
}

func (h *ScanHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBody))
	if err != nil {
		return nil, errs.NewWithExtra(errs.Warn, "read request body failed", err.Error())
	}
	if len(body) == 0 {
		return nil, errs.NewWarn("request body is required")
	}
	return body, nil
}

func writeCSV(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	_, _ = w.Write(b)
}

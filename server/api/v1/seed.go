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
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zintix-labs/colab"
	"github.com/zintix-labs/colab/corefmt"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/sdk/levelgen"
	"github.com/zintix-labs/colab/server/httperr"
	"github.com/zintix-labs/colab/server/netsvr"
)

// SeedResponse GET /v1/seeds/{seed}
type SeedResponse struct {
	Seed       string                  `json:"seed"`
	Rooms      uint32                  `json:"rooms"`
	Themes     [levelgen.Themes]uint16 `json:"themes"`
	ThemeNames []string                `json:"theme_names"`
	DarkLevel  int                     `json:"dark_level"`
}

// LevelView 單層輸出
type LevelView struct {
	Level    int    `json:"level"`
	Label    string `json:"label"` // 7-LL
	Theme    string `json:"theme"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Rooms    int    `json:"rooms"`
	DarkRoll bool   `json:"dark"`  // 到這一層為止是否已抽中暗關
	State    string `json:"state"` // 關卡 PRNG 狀態，16 bytes hex，可交給 /v1/levels/{state} 重抽
}

func newLevelView(l levelgen.LevelRecord) LevelView {
	return LevelView{
		Level:    l.Level,
		Label:    levelgen.Label(l.Level),
		Theme:    l.Theme.String(),
		Width:    l.Width,
		Height:   l.Height,
		Rooms:    l.Rooms(),
		DarkRoll: l.Dark,
		State:    hex.EncodeToString(l.State.Snapshot()),
	}
}

// LevelsResponse GET /v1/seeds/{seed}/levels
type LevelsResponse struct {
	SeedResponse
	Levels []LevelView `json:"levels"`
}

func newSeedResponse(r colab.Result) SeedResponse {
	return SeedResponse{
		Seed:       corefmt.FormatSeed(r.Seed),
		Rooms:      r.Rooms,
		Themes:     r.Themes,
		ThemeNames: levelgen.ThemeNames(),
		DarkLevel:  r.DarkLevel,
	}
}

func seedParam(r *http.Request) (uint32, error) {
	s := netsvr.URLParam(r, "seed")
	seed, err := corefmt.ParseSeed(s)
	if err != nil {
		return 0, errs.WrapWithExtra(err, "invalid seed", s)
	}
	return seed, nil
}

// Seed 單一種子的房間總數與主題直方圖
func Seed(w http.ResponseWriter, r *http.Request) {
	seed, err := seedParam(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, newSeedResponse(colab.Analyze(seed)))
}

// Levels 逐層列出最終段 5..98 層。?theme=<名稱> 只列出該主題的層。
func Levels(w http.ResponseWriter, r *http.Request) {
	seed, err := seedParam(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	keep := func(levelgen.Theme) bool { return true }
	if name := r.URL.Query().Get("theme"); name != "" {
		th, ok := levelgen.ParseTheme(name)
		if !ok {
			httperr.Errs(w, errs.NewWithExtra(errs.Warn, "unknown theme", name))
			return
		}
		keep = func(t levelgen.Theme) bool { return t == th }
	}
	res, levels := colab.Trace(seed)
	resp := LevelsResponse{SeedResponse: newSeedResponse(res), Levels: make([]LevelView, 0, len(levels))}
	for _, l := range levels {
		if keep(l.Theme) {
			resp.Levels = append(resp.Levels, newLevelView(l))
		}
	}
	writeJSON(w, resp)
}

// Reroll 由 Levels 回傳的 state 重抽單一層：GET /v1/levels/{state}?level=N&dark=bool
//
// dark 為進入該層前是否已抽中暗關。
func Reroll(w http.ResponseWriter, r *http.Request) {
	raw := netsvr.URLParam(r, "state")
	snap, err := hex.DecodeString(raw)
	if err != nil {
		httperr.Errs(w, errs.NewWithExtra(errs.Warn, "state must be hex", raw))
		return
	}
	q := r.URL.Query()
	level, err := strconv.Atoi(q.Get("level"))
	if err != nil {
		httperr.Errs(w, errs.NewWithExtra(errs.Warn, "level must be an integer", q.Get("level")))
		return
	}
	dark := false
	if v := q.Get("dark"); v != "" {
		if dark, err = strconv.ParseBool(v); err != nil {
			httperr.Errs(w, errs.NewWithExtra(errs.Warn, "dark must be a bool", v))
			return
		}
	}
	rec, err := levelgen.Reroll(snap, level, dark)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, newLevelView(rec))
}

// Version 版本資訊
func Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"name": "colab", "version": colab.Version})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response failed"))
	}
}

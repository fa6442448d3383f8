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

// Package colab 重播關卡生成器的 PRNG，計算每個種子最終世界 CO 關卡的內部房間總數，
// 並在種子範圍中搜尋偏小 / 偏大的離群值。
//
// 單一種子的分析是純函數：同一個種子永遠得到相同結果，不同種子之間沒有共享狀態，
// 因此範圍掃描可以直接以種子區段切分給多個 worker。
package colab

import (
	"github.com/zintix-labs/colab/csvio"
	"github.com/zintix-labs/colab/recorder"
	"github.com/zintix-labs/colab/sdk/levelgen"
)

// Version 工具版本（SemVer），也出現在預設輸出檔名中。
const Version = "0.3.1"

// 單一種子 Rooms 的理論範圍：94 層 × [3*2, 6*6]
const (
	MinRooms = levelgen.COLevels * (levelgen.MinWidth - 2) * (levelgen.MinHeight - 2)
	MaxRooms = levelgen.COLevels * (levelgen.MaxWidth - 2) * (levelgen.MaxHeight - 2)
)

// Result 單一種子的分析結果
type Result struct {
	Seed      uint32                  `json:"seed"`
	Rooms     uint32                  `json:"rooms"`
	Themes    [levelgen.Themes]uint16 `json:"themes"`
	DarkLevel int                     `json:"dark_level"` // 最終段抽中暗關的層數，0 為未抽中
}

// Analyze 走完一局並彙總 CO 房間數與主題分布。
func Analyze(seed uint32) Result {
	res := Result{Seed: seed}
	w := levelgen.Walk(seed, func(r levelgen.LevelRecord) {
		res.Rooms += uint32(r.Rooms())
		res.Themes[r.Theme]++
	})
	res.DarkLevel = w.DarkLevel()
	return res
}

// Trace 同 Analyze，並回傳每一個 CO 層的明細。
func Trace(seed uint32) (Result, []levelgen.LevelRecord) {
	res := Result{Seed: seed}
	levels := make([]levelgen.LevelRecord, 0, levelgen.COLevels)
	w := levelgen.Walk(seed, func(r levelgen.LevelRecord) {
		res.Rooms += uint32(r.Rooms())
		res.Themes[r.Theme]++
		levels = append(levels, r)
	})
	res.DarkLevel = w.DarkLevel()
	return res, levels
}

// Hit 轉成掃描桶使用的紀錄。
func (r Result) Hit() recorder.Hit {
	return recorder.Hit{Seed: r.Seed, Rooms: r.Rooms, Themes: r.Themes}
}

// Row 轉成結果檔的一列（含主題計數）。
func (r Result) Row() csvio.Row {
	return csvio.Row{Seed: r.Seed, Rooms: r.Rooms, Themes: r.Themes, HasThemes: true}
}

// ThemeTotal 回傳主題計數總和（恆為 94）。
func (r Result) ThemeTotal() int {
	n := 0
	for _, c := range r.Themes {
		n += int(c)
	}
	return n
}

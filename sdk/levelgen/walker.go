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

// Package levelgen 依序走過一整局的關卡，重播生成器在每一層的抽籤順序。
//
// 一局分兩段：
//   - 前段（1-1 到 6-4，共 18 層）：不抽籤，只累加 session/level 種子。
//   - 最終段（7-1 到 7-98）：每層重新派生關卡狀態，抽主題、暗關與 CO 尺寸。
//
// 前段雖然沒有輸出，但它推進的累加器是最終段的輸入，不能省略。
package levelgen

import (
	"fmt"
	"iter"

	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/sdk/core"
)

// 各世界非最終段的關卡數
const (
	W1Levels = 4
	W2Levels = 4
	W3Levels = 1
	W4Levels = 4
	W5Levels = 1
	W6Levels = 4

	EarlyLevels = W1Levels + W2Levels + W3Levels + W4Levels + W5Levels + W6Levels
	FinalLevels = 98
	FinalWorld  = 7

	FirstCOLevel   = 5                             // 從 7-5 開始抽 CO 尺寸
	COLevels       = FinalLevels - FirstCOLevel + 1 // 94
	WarmupAdvances = 9                             // 生成器跑 10 次，第 10 次結果不被讀取
	DarkOdds       = 12                            // 暗關 1/12

	MinWidth  = 5
	MaxWidth  = 8
	MinHeight = 4
	MaxHeight = 8
)

// LevelRecord 為最終段單層（L >= 5）的抽籤結果。
type LevelRecord struct {
	Level  int   `json:"level"`
	Theme  Theme `json:"theme"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Dark   bool  `json:"dark"` // 到這一層為止本局是否已抽中暗關

	// 本層派生後、抽主題前的關卡 PRNG 狀態，可交給 Reroll 重抽本層
	State core.State `json:"-"`
}

// Rooms 回傳扣掉四周空房後的內部房間數。
func (r LevelRecord) Rooms() int {
	return (r.Width - 2) * (r.Height - 2)
}

// Label 回傳層數標籤，例如 7-05
func Label(level int) string {
	return fmt.Sprintf("%d-%02d", FinalWorld, level)
}

// String 以 "7-LL: <主題> WxH" 輸出單層
func (r LevelRecord) String() string {
	return fmt.Sprintf("%s: %11s %dx%d", Label(r.Level), r.Theme, r.Width, r.Height)
}

// Walker 持有單一種子一局的累加器與暗關旗標。
//
// 不可跨 goroutine 共用；每個種子各建一個。
type Walker struct {
	session   uint64
	level     uint64
	next      int // 下一個要模擬的最終段層數 (1-based)
	dark      bool
	darkLevel int
}

// NewWalker 初始化生成器並走完前段。
func NewWalker(seed uint32) Walker {
	st := core.New(seed)
	w := Walker{
		session: st.A,
		level:   st.A + st.B, // 第 1 層
		next:    1,
	}
	for l := 2; l <= EarlyLevels; l++ {
		w.level += w.session
	}
	return w
}

// Next 模擬下一層最終段關卡。
//
// rec 只有在 ok 為 true（L >= 5）時有效；more 為 false 代表本局已結束。
func (w *Walker) Next() (rec LevelRecord, ok bool, more bool) {
	if w.next > FinalLevels {
		return rec, false, false
	}
	l := w.next
	w.next++

	w.level += w.session
	h := ((w.level >> 32) ^ w.level) & 0xFFFFFFFF

	st := core.FromReseed(h)
	st.Skip(WarmupAdvances)
	st = core.FromReseed(st.A & 0xFFFFFFFF)

	rec, rolled := roll(st, l, w.dark)
	if rolled {
		w.dark = true
		w.darkLevel = l
	}
	return rec, l >= FirstCOLevel, w.next <= FinalLevels
}

// roll 以關卡狀態 st 依序抽主題、暗關與 CO 尺寸；非 CO 層只抽暗關。
//
// rolled 代表暗關在本層抽中。
func roll(st core.State, level int, dark bool) (rec LevelRecord, rolled bool) {
	start := st
	co := level >= FirstCOLevel
	if co {
		rec.Theme = Theme(st.IntRange(0, Themes-1))
		st.Advance()
	}

	if !dark {
		rolled = st.IntRange(0, DarkOdds-1) == 0
		st.Advance()
	}

	if co {
		st.Skip(2)
		rec.Width = int(st.IntRange(MinWidth, MaxWidth))
		st.Advance()
		rec.Height = int(st.IntRange(MinHeight, MaxHeight))
		rec.Level = level
		rec.Dark = dark || rolled
		rec.State = start
	}
	return rec, rolled
}

// Reroll 由 core.State.Snapshot 的 16 bytes 重抽第 level 層（CO 層）。
//
// dark 為進入本層前是否已抽中暗關，它決定本層要不要消耗暗關那一抽。
func Reroll(snapshot []byte, level int, dark bool) (LevelRecord, error) {
	if level < FirstCOLevel || level > FinalLevels {
		return LevelRecord{}, errs.Warnf("level must be in [%d, %d], got %d", FirstCOLevel, FinalLevels, level)
	}
	var st core.State
	if err := st.Restore(snapshot); err != nil {
		return LevelRecord{}, err
	}
	rec, _ := roll(st, level, dark)
	return rec, nil
}

// DarkLevel 回傳抽中暗關的最終段層數，未抽中為 0。
func (w *Walker) DarkLevel() int { return w.darkLevel }

// Walk 走完一局，對每一個 CO 層呼叫 fn。
func Walk(seed uint32, fn func(LevelRecord)) Walker {
	w := NewWalker(seed)
	for {
		rec, ok, more := w.Next()
		if ok {
			fn(rec)
		}
		if !more {
			return w
		}
	}
}

// Levels 以 iterator 形式回傳一局的 CO 層。
func Levels(seed uint32) iter.Seq[LevelRecord] {
	return func(yield func(LevelRecord) bool) {
		w := NewWalker(seed)
		for {
			rec, ok, more := w.Next()
			if ok && !yield(rec) {
				return
			}
			if !more {
				return
			}
		}
	}
}

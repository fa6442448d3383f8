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

package levelgen

import (
	"fmt"
	"testing"
)

func collect(seed uint32) []LevelRecord {
	var out []LevelRecord
	Walk(seed, func(r LevelRecord) { out = append(out, r) })
	return out
}

func TestEarlyLevelCount(t *testing.T) {
	if EarlyLevels != 18 {
		t.Fatalf("early levels got %d", EarlyLevels)
	}
	if COLevels != 94 {
		t.Fatalf("co levels got %d", COLevels)
	}
}

func TestWalkEmitsEveryCOLevel(t *testing.T) {
	for _, seed := range []uint32{0, 1, 0x5365, 0xFFFFFFFF} {
		recs := collect(seed)
		if len(recs) != COLevels {
			t.Fatalf("seed %08X: %d records", seed, len(recs))
		}
		for i, r := range recs {
			if r.Level != FirstCOLevel+i {
				t.Fatalf("seed %08X: record %d has level %d", seed, i, r.Level)
			}
			if r.Width < MinWidth || r.Width > MaxWidth || r.Height < MinHeight || r.Height > MaxHeight {
				t.Fatalf("seed %08X: level %d size %dx%d out of range", seed, r.Level, r.Width, r.Height)
			}
			if int(r.Theme) >= Themes {
				t.Fatalf("seed %08X: theme %d", seed, r.Theme)
			}
		}
	}
}

func TestWalkGoldenLevels(t *testing.T) {
	type lv struct {
		level, theme, w, h int
		dark               bool
	}
	cases := map[uint32][]lv{
		0x00000000: {{5, 1, 6, 7, false}, {6, 0, 7, 6, false}, {7, 0, 5, 6, false}, {8, 0, 6, 4, false}, {9, 7, 5, 7, false}, {10, 2, 5, 7, false}},
		0x00005365: {{5, 1, 8, 7, false}, {6, 3, 6, 7, false}, {7, 1, 5, 6, false}, {8, 7, 5, 6, false}, {9, 1, 8, 5, false}, {10, 7, 5, 4, true}},
	}
	for seed, want := range cases {
		recs := collect(seed)
		for i, w := range want {
			r := recs[i]
			got := lv{r.Level, int(r.Theme), r.Width, r.Height, r.Dark}
			if got != w {
				t.Fatalf("seed %08X level %d: got %+v want %+v", seed, w.level, got, w)
			}
		}
		last := recs[len(recs)-1]
		if !last.Dark {
			t.Fatalf("seed %08X: dark level should have latched by 7-98", seed)
		}
	}
}

func TestDarkLatchesOnce(t *testing.T) {
	cases := map[uint32]int{0: 14, 1: 23, 2: 5, 6: 3, 8: 2, 9: 1, 0x5365: 10, 0xFFFFFFFF: 1}
	for seed, want := range cases {
		var seen bool
		w := Walk(seed, func(r LevelRecord) {
			if seen && !r.Dark {
				t.Fatalf("seed %08X: dark flag reset at level %d", seed, r.Level)
			}
			seen = r.Dark
			if r.Level < want && r.Dark {
				t.Fatalf("seed %08X: dark before level %d", seed, want)
			}
			if r.Level >= want && !r.Dark {
				t.Fatalf("seed %08X: dark missing at level %d", seed, r.Level)
			}
		})
		if w.DarkLevel() != want {
			t.Fatalf("seed %08X: dark level %d want %d", seed, w.DarkLevel(), want)
		}
	}
}

func TestLevelsIteratorMatchesWalk(t *testing.T) {
	want := collect(0xDEADBEEF)
	i := 0
	for r := range Levels(0xDEADBEEF) {
		if r != want[i] {
			t.Fatalf("record %d mismatch", i)
		}
		i++
	}
	if i != len(want) {
		t.Fatalf("iterator yielded %d", i)
	}

	n := 0
	for range Levels(0xDEADBEEF) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("early break failed")
	}
}

func TestRerollReproducesWalk(t *testing.T) {
	for _, seed := range []uint32{0, 1, 0x5365, 0xDEADBEEF, 0xFFFFFFFF} {
		var recs []LevelRecord
		w := Walk(seed, func(r LevelRecord) { recs = append(recs, r) })
		dark := w.DarkLevel() > 0 && w.DarkLevel() < FirstCOLevel
		for _, r := range recs {
			got, err := Reroll(r.State.Snapshot(), r.Level, dark)
			if err != nil {
				t.Fatalf("seed %08X level %d: %v", seed, r.Level, err)
			}
			if got != r {
				t.Fatalf("seed %08X level %d: reroll %+v want %+v", seed, r.Level, got, r)
			}
			dark = r.Dark
		}
	}
}

func TestRerollRejects(t *testing.T) {
	snap := collect(0)[0].State.Snapshot()
	for _, level := range []int{0, FirstCOLevel - 1, FinalLevels + 1} {
		if _, err := Reroll(snap, level, false); err == nil {
			t.Fatalf("level %d must fail", level)
		}
	}
	if _, err := Reroll(snap[:15], FirstCOLevel, false); err == nil {
		t.Fatalf("short snapshot must fail")
	}
}

func TestNextAfterEnd(t *testing.T) {
	w := NewWalker(7)
	for {
		_, _, more := w.Next()
		if !more {
			break
		}
	}
	if _, ok, more := w.Next(); ok || more {
		t.Fatalf("exhausted walker must stay exhausted")
	}
}

func TestThemeNames(t *testing.T) {
	if SunkenCity.String() != "Sunken City" || Theme(9).String() != "Theme(9)" {
		t.Fatalf("theme names")
	}
	if th, ok := ParseTheme("tide pool"); !ok || th != TidePool {
		t.Fatalf("parse theme")
	}
	if _, ok := ParseTheme("cosmic"); ok {
		t.Fatalf("unknown theme must fail")
	}
	if len(ThemeNames()) != Themes {
		t.Fatalf("theme name count")
	}
}

func TestLevelRecordString(t *testing.T) {
	r := LevelRecord{Level: 9, Theme: NeoBabylon, Width: 8, Height: 5}
	if got := r.String(); got != "7-09: Neo Babylon 8x5" {
		t.Fatalf("got %q", got)
	}
	if Label(98) != "7-98" {
		t.Fatalf("label %q", Label(98))
	}
}

func ExampleWalk() {
	Walk(0x5365, func(r LevelRecord) {
		if r.Level <= 7 {
			fmt.Printf("%d-%02d: %11s %dx%d\n", FinalWorld, r.Level, r.Theme, r.Width, r.Height)
		}
	})
	// Output:
	// 7-05:      Jungle 8x7
	// 7-06:   Tide Pool 6x7
	// 7-07:      Jungle 5x6
}

func BenchmarkWalk(b *testing.B) {
	seed := uint32(0)
	rooms := 0
	for b.Loop() {
		Walk(seed, func(r LevelRecord) { rooms += r.Rooms() })
		seed++
	}
	_ = rooms
}

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

package colab_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zintix-labs/colab"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/recorder"
	"github.com/zintix-labs/colab/scancfg"
	"github.com/zintix-labs/colab/sdk/levelgen"
)

var golden = []struct {
	seed   uint32
	rooms  uint32
	themes [levelgen.Themes]uint16
	dark   int
}{
	{0x00000000, 1583, [8]uint16{11, 15, 11, 10, 12, 10, 12, 13}, 14},
	{0x00000001, 1616, [8]uint16{16, 10, 10, 9, 14, 11, 15, 9}, 23},
	{0x00000002, 1633, [8]uint16{18, 12, 6, 9, 8, 16, 15, 10}, 5},
	{0x00000009, 1644, [8]uint16{14, 13, 8, 19, 10, 12, 5, 13}, 1},
	{0x00005365, 1367, [8]uint16{9, 11, 12, 9, 13, 10, 16, 14}, 10},
	{0xDEADBEEF, 1803, [8]uint16{21, 10, 14, 15, 9, 7, 12, 6}, 14},
	{0xFFFFFFFF, 1717, [8]uint16{12, 11, 13, 8, 11, 13, 15, 11}, 1},
}

func TestAnalyzeGolden(t *testing.T) {
	for _, g := range golden {
		r := colab.Analyze(g.seed)
		if r.Seed != g.seed || r.Rooms != g.rooms || r.Themes != g.themes || r.DarkLevel != g.dark {
			t.Fatalf("seed %08X: got %+v want rooms %d themes %v dark %d", g.seed, r, g.rooms, g.themes, g.dark)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	for seed := uint32(0); seed < 64; seed++ {
		if colab.Analyze(seed) != colab.Analyze(seed) {
			t.Fatalf("seed %08X not deterministic", seed)
		}
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	check := func(seed uint32) {
		r := colab.Analyze(seed)
		if r.Rooms < colab.MinRooms || r.Rooms > colab.MaxRooms {
			t.Fatalf("seed %08X rooms %d outside [%d,%d]", seed, r.Rooms, colab.MinRooms, colab.MaxRooms)
		}
		if r.ThemeTotal() != levelgen.COLevels {
			t.Fatalf("seed %08X theme total %d", seed, r.ThemeTotal())
		}
		for _, c := range r.Themes {
			if c > levelgen.COLevels {
				t.Fatalf("seed %08X theme count %d", seed, c)
			}
		}
	}
	for seed := uint32(0); seed < 2000; seed++ {
		check(seed)
	}
	for seed := uint64(0); seed <= 0xFFFFFFFF; seed += 0x00FFFFF1 {
		check(uint32(seed))
	}
	if colab.MinRooms != 564 || colab.MaxRooms != 3384 {
		t.Fatalf("room bounds %d-%d", colab.MinRooms, colab.MaxRooms)
	}
}

func TestTraceMatchesAnalyze(t *testing.T) {
	res, levels := colab.Trace(0x5365)
	if res != colab.Analyze(0x5365) {
		t.Fatalf("trace result differs from analyze")
	}
	if len(levels) != levelgen.COLevels {
		t.Fatalf("levels %d", len(levels))
	}
	sum := 0
	for _, l := range levels {
		sum += l.Rooms()
	}
	if uint32(sum) != res.Rooms {
		t.Fatalf("level sum %d rooms %d", sum, res.Rooms)
	}
}

func TestSearchSmallRangeConsistency(t *testing.T) {
	res, err := colab.Search(0, 9, 3384, 564, 10)
	if err != nil {
		t.Fatal(err)
	}
	// 每個種子都同時落在兩桶；第 10 個種子讓 Small 滿，掃描立即停止，因此 Big 少一筆。
	if len(res.Small) != 10 || len(res.Big) != 9 {
		t.Fatalf("small %d big %d", len(res.Small), len(res.Big))
	}
	for i, h := range res.Small {
		want := colab.Analyze(uint32(i))
		if h.Seed != uint32(i) || h.Rooms != want.Rooms || h.Themes != want.Themes {
			t.Fatalf("small[%d] = %+v, analyze %+v", i, h, want)
		}
	}
	for i, h := range res.Big {
		if h != colab.Analyze(uint32(i)).Hit() {
			t.Fatalf("big[%d] mismatch", i)
		}
	}
	if res.Last != 9 || res.Scanned != 10 || !res.Truncated {
		t.Fatalf("last %d scanned %d truncated %v", res.Last, res.Scanned, res.Truncated)
	}
}

func TestSearchClassifiesLikeAnalyze(t *testing.T) {
	res, err := colab.Search(0, 9, 1600, 1650, 10)
	if err != nil {
		t.Fatal(err)
	}
	var small, big []uint32
	for seed := uint32(0); seed <= 9; seed++ {
		r := colab.Analyze(seed)
		if r.Rooms <= 1600 {
			small = append(small, seed)
		}
		if r.Rooms >= 1650 {
			big = append(big, seed)
		}
	}
	if len(res.Small) != len(small) || len(res.Big) != len(big) {
		t.Fatalf("small %v big %v, got %+v", small, big, res)
	}
	for i := range small {
		if res.Small[i].Seed != small[i] {
			t.Fatalf("small order")
		}
	}
	for i := range big {
		if res.Big[i].Seed != big[i] {
			t.Fatalf("big order")
		}
	}
	if res.Truncated || res.Scanned != 10 {
		t.Fatalf("full range must not be truncated")
	}
}

func TestSearchCapacityCutoff(t *testing.T) {
	res, err := colab.Search(0, 0xFFFFFFFF, 1600, 1800, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Small) != 1 || res.Small[0].Seed != 0 || res.Small[0].Rooms != 1583 || len(res.Big) != 0 {
		t.Fatalf("got %+v", res)
	}
	if res.Scanned != 1 || !res.Truncated {
		t.Fatalf("scan must stop after the first hit")
	}

	res, err = colab.Search(0, 0xFFFFFFFF, 1500, 1700, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Big) != 1 || res.Big[0].Seed != 6 || res.Big[0].Rooms != 1707 || len(res.Small) != 0 {
		t.Fatalf("got %+v", res)
	}
	if res.Last != 6 || res.Scanned != 7 {
		t.Fatalf("last %d scanned %d", res.Last, res.Scanned)
	}
}

func TestSearchClampsEnd(t *testing.T) {
	res, err := colab.Search(0xFFFFFFF0, 0x100000005, 0, 3384, 5)
	if err != nil {
		t.Fatal(err)
	}
	if res.End != 0xFFFFFFFF || res.Last != 0xFFFFFFFF || res.Scanned != 16 || res.Truncated {
		t.Fatalf("got %+v", res)
	}
}

func TestSearchRejects(t *testing.T) {
	cases := []func() error{
		func() error { _, err := colab.Search(10, 9, 1400, 2000, 1); return err },
		func() error { _, err := colab.Search(0x100000000, 0x100000001, 1400, 2000, 1); return err },
		func() error { _, err := colab.Search(0, 9, 1400, 2000, 0); return err },
	}
	for i, c := range cases {
		err := c()
		if err == nil || !errs.IsWarn(err) {
			t.Fatalf("case %d: want warn, got %v", i, err)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	res, err := colab.Search(0, 19, 1600, 1790, 10)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := res.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	want := "00000000,1583\n00000004,1557\n00000012,1580\n0000000D,1792\n0000000F,1798\n"
	if buf.String() != want {
		t.Fatalf("got\n%s", buf.String())
	}
}

func TestSearchMPMatchesSearch(t *testing.T) {
	for _, policy := range []string{"any", "both"} {
		for _, capacity := range []int{1, 3, 50, 1000} {
			set := scancfg.Default()
			set.Start, set.End = "00000100", "00000FFF"
			set.SmallMax, set.BigMin = 1550, 1850
			set.Capacity = capacity
			set.Workers = 4
			set.Chunk = 97
			set.Stop = policy
			if err := set.Init(); err != nil {
				t.Fatal(err)
			}
			p, _ := recorder.ParseStopPolicy(policy)
			want, err := colab.SearchWithPolicy(0x100, 0xFFF, 1550, 1850, capacity, p)
			if err != nil {
				t.Fatal(err)
			}
			got, _, err := colab.NewSearcher().SearchMP(context.Background(), set)
			if err != nil {
				t.Fatal(err)
			}
			if got.Last != want.Last || got.Scanned != want.Scanned || got.Truncated != want.Truncated {
				t.Fatalf("%s/%d: got last %X scanned %d trunc %v, want %X %d %v", policy, capacity,
					got.Last, got.Scanned, got.Truncated, want.Last, want.Scanned, want.Truncated)
			}
			if len(got.Small) != len(want.Small) || len(got.Big) != len(want.Big) {
				t.Fatalf("%s/%d: got %d/%d want %d/%d", policy, capacity, len(got.Small), len(got.Big), len(want.Small), len(want.Big))
			}
			for i := range want.Small {
				if got.Small[i] != want.Small[i] {
					t.Fatalf("%s/%d: small[%d]", policy, capacity, i)
				}
			}
			for i := range want.Big {
				if got.Big[i] != want.Big[i] {
					t.Fatalf("%s/%d: big[%d]", policy, capacity, i)
				}
			}
		}
	}
}

func TestSearchMPCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set := scancfg.Default()
	set.Workers = 2
	_, _, err := colab.NewSearcher().SearchMP(ctx, set)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled, got %v", err)
	}
}

func TestSearchMPRejectsBadSetting(t *testing.T) {
	set := scancfg.Default()
	set.End = "zz"
	if _, _, err := colab.NewSearcher().SearchMP(context.Background(), set); err == nil || !errs.IsWarn(err) {
		t.Fatalf("want warn, got %v", err)
	}
	if _, _, err := colab.NewSearcher().SearchMP(context.Background(), nil); err == nil {
		t.Fatalf("nil setting must fail")
	}
}

func TestRederive(t *testing.T) {
	in := "00000000,1583\n00005365,1367,extra\n\nDEADBEEF\n"
	var out bytes.Buffer
	n, err := colab.NewSearcher().Rederive(context.Background(), strings.NewReader(in), &out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("rows %d", n)
	}
	want := "00000000,1583,11,15,11,10,12,10,12,13\n" +
		"00005365,1367, 9,11,12, 9,13,10,16,14\n" +
		"DEADBEEF,1803,21,10,14,15, 9, 7,12, 6\n"
	if out.String() != want {
		t.Fatalf("got\n%s", out.String())
	}

	_, err = colab.NewSearcher().Rederive(context.Background(), strings.NewReader("nope\n"), &out)
	if err == nil || !errs.IsWarn(err) {
		t.Fatalf("bad input must be a warn, got %v", err)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	seed := uint32(0)
	for b.Loop() {
		_ = colab.Analyze(seed)
		seed++
	}
}

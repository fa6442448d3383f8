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

package colab

import (
	"io"

	"github.com/zintix-labs/colab/corefmt"
	"github.com/zintix-labs/colab/csvio"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/recorder"
)

// SearchResult 範圍掃描結果
//
// Small / Big 依種子遞增排列。Truncated 表示掃描因桶滿而提前停止，
// 此時 Last 為最後一個被分析的種子。
type SearchResult struct {
	Start     uint32         `json:"start"`
	End       uint32         `json:"end"`
	Last      uint32         `json:"last"`
	Scanned   uint64         `json:"scanned"`
	Truncated bool           `json:"truncated"`
	SmallMax  uint32         `json:"small_max"`
	BigMin    uint32         `json:"big_min"`
	Capacity  int            `json:"capacity"`
	Policy    string         `json:"policy"`
	Small     []recorder.Hit `json:"small"`
	Big       []recorder.Hit `json:"big"`
}

// Search 依序掃描 [start, min(end, 0xFFFFFFFF)]：
// Rooms <= smallMax 收進 Small、Rooms >= bigMin 收進 Big，任一桶達 capacity 即停止整個掃描。
func Search(start, end uint64, smallMax, bigMin uint32, capacity int) (SearchResult, error) {
	return SearchWithPolicy(start, end, smallMax, bigMin, capacity, recorder.StopAny)
}

// SearchWithPolicy 同 Search，可指定停止策略。
func SearchWithPolicy(start, end uint64, smallMax, bigMin uint32, capacity int, policy recorder.StopPolicy) (SearchResult, error) {
	first, last, err := clampRange(start, end)
	if err != nil {
		return SearchResult{}, err
	}
	b, err := recorder.NewBuckets(smallMax, bigMin, capacity, policy)
	if err != nil {
		return SearchResult{}, err
	}
	res := newSearchResult(first, last, b)
	for s := uint64(first); s <= uint64(last); s++ {
		r := Analyze(uint32(s))
		res.Last = uint32(s)
		res.Scanned++
		if b.Wants(r.Rooms) && b.Record(r.Hit()) {
			res.Truncated = true
			break
		}
	}
	res.Small, res.Big = b.Small, b.Big
	return res, nil
}

// WriteCSV 先輸出 Small 再輸出 Big，每列 `SEED_HEX,COUNT`。
func (r *SearchResult) WriteCSV(w io.Writer) error {
	cw := csvio.NewWriter(w)
	for _, group := range [][]recorder.Hit{r.Small, r.Big} {
		for _, h := range group {
			if err := cw.WriteRow(csvio.Row{Seed: h.Seed, Rooms: h.Rooms}); err != nil {
				return err
			}
		}
	}
	return cw.Flush()
}

func newSearchResult(first, last uint32, b *recorder.Buckets) SearchResult {
	small, big := b.Thresholds()
	return SearchResult{
		Start:    first,
		End:      last,
		Last:     first,
		SmallMax: small,
		BigMin:   big,
		Capacity: b.Capacity(),
		Policy:   b.Policy().String(),
	}
}

func clampRange(start, end uint64) (uint32, uint32, error) {
	if start > corefmt.MaxSeed {
		return 0, 0, errs.Warnf("start seed %#x exceeds %08X", start, corefmt.MaxSeed)
	}
	last := corefmt.ClampEnd(end)
	if uint32(start) > last {
		return 0, 0, errs.Warnf("start seed %08X is after end seed %08X", start, last)
	}
	return uint32(start), last, nil
}

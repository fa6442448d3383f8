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

// Package recorder 收集掃描中落在「偏小 / 偏大」兩個桶的種子。
package recorder

import (
	"strings"

	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/sdk/levelgen"
)

// Hit 一筆命中的種子
type Hit struct {
	Seed   uint32                  `json:"seed"`
	Rooms  uint32                  `json:"rooms"`
	Themes [levelgen.Themes]uint16 `json:"themes"`
}

// StopPolicy 決定掃描何時整體停止。
type StopPolicy uint8

const (
	// StopAny 任一桶滿就停止整個掃描（另一桶的後續命中一併放棄）。
	StopAny StopPolicy = iota
	// StopBoth 滿的桶不再收，掃描持續到兩桶皆滿或範圍結束。
	StopBoth
)

func (p StopPolicy) String() string {
	switch p {
	case StopAny:
		return "any"
	case StopBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseStopPolicy 解析 "any" / "both"，空字串為 StopAny。
func ParseStopPolicy(s string) (StopPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return StopAny, nil
	case "both":
		return StopBoth, nil
	default:
		return StopAny, errs.NewWithExtra(errs.Warn, "stop policy must be any or both", s)
	}
}

// Buckets 偏小 / 偏大兩個有上限的桶。
//
// 一個 Buckets 只屬於一個 worker；跨 worker 的結果由 Replay 依種子順序合併。
type Buckets struct {
	smallMax uint32
	bigMin   uint32
	capacity int
	policy   StopPolicy
	Small    []Hit
	Big      []Hit
}

// NewBuckets 建立桶：Rooms <= smallMax 進 Small，Rooms >= bigMin 進 Big，各桶最多 capacity 筆。
func NewBuckets(smallMax, bigMin uint32, capacity int, policy StopPolicy) (*Buckets, error) {
	if capacity < 1 {
		return nil, errs.Warnf("capacity must > 0, got %d", capacity)
	}
	if policy != StopAny && policy != StopBoth {
		return nil, errs.Warnf("unknown stop policy %d", policy)
	}
	return &Buckets{
		smallMax: smallMax,
		bigMin:   bigMin,
		capacity: capacity,
		policy:   policy,
	}, nil
}

// Record 依序分類一個種子，回傳 true 代表掃描必須立即停止。
//
// StopAny 下若 Small 因本筆而滿，本筆不再檢查 Big。
func (b *Buckets) Record(h Hit) bool {
	if h.Rooms <= b.smallMax && len(b.Small) < b.capacity {
		b.Small = append(b.Small, h)
		if b.policy == StopAny && len(b.Small) >= b.capacity {
			return true
		}
	}
	if h.Rooms >= b.bigMin && len(b.Big) < b.capacity {
		b.Big = append(b.Big, h)
	}
	return b.Done()
}

// Done 回報是否已達停止條件。
func (b *Buckets) Done() bool {
	smallFull := len(b.Small) >= b.capacity
	bigFull := len(b.Big) >= b.capacity
	if b.policy == StopBoth {
		return smallFull && bigFull
	}
	return smallFull || bigFull
}

// Wants 回報 rooms 是否會被任一桶分類（不論桶是否已滿）。
func (b *Buckets) Wants(rooms uint32) bool {
	return rooms <= b.smallMax || rooms >= b.bigMin
}

// Replay 依種子遞增順序把 o 的命中重新送進 b，回傳是否達停止條件及停止時的種子。
//
// o 必須是以相同門檻、相同策略、由較大種子區段掃出的結果。
// 因為 b 的計數永遠不小於 o，o 提前停止時 b 必定在同一點或更早停止。
func (b *Buckets) Replay(o *Buckets) (done bool, at uint32) {
	i, j := 0, 0
	for i < len(o.Small) || j < len(o.Big) {
		var h Hit
		switch {
		case j >= len(o.Big) || (i < len(o.Small) && o.Small[i].Seed < o.Big[j].Seed):
			h = o.Small[i]
			i++
		case i >= len(o.Small) || o.Big[j].Seed < o.Small[i].Seed:
			h = o.Big[j]
			j++
		default: // 同一個種子同時出現在兩桶
			h = o.Small[i]
			i++
			j++
		}
		if b.Record(h) {
			return true, h.Seed
		}
	}
	return false, 0
}

// Fresh 回傳門檻、容量與策略都相同的空桶，給各 worker 使用。
func (b *Buckets) Fresh() *Buckets {
	return &Buckets{
		smallMax: b.smallMax,
		bigMin:   b.bigMin,
		capacity: b.capacity,
		policy:   b.policy,
	}
}

func (b *Buckets) Capacity() int { return b.capacity }

func (b *Buckets) Policy() StopPolicy { return b.policy }

// Thresholds 回傳 (smallMax, bigMin)。
func (b *Buckets) Thresholds() (uint32, uint32) { return b.smallMax, b.bigMin }

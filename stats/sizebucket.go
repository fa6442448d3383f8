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

package stats

import (
	"strconv"

	"github.com/zintix-labs/colab"
)

// SizeBuckets 以查表 O(1) 定位房間總數所屬的區間
type SizeBuckets struct {
	edges  []uint32
	labels []string
	lut    []uint8 // lut[rooms] = idx，rooms <= MaxRooms
}

// Buckets
//
// 請勿修改預設值
//   - 房間區間: [564,1400], (1400,1500), [1500,1600), ..., [1900,2000), [2000,3384]
//   - 首尾兩桶對應預設的小桶 / 大桶門檻
var Buckets = newSizeBuckets([]uint32{1400, 1500, 1600, 1700, 1800, 1900, 2000})

func newSizeBuckets(edges []uint32) *SizeBuckets {
	b := &SizeBuckets{edges: edges}

	b.labels = make([]string, 0, len(edges)+1)
	b.labels = append(b.labels, "["+itoa(colab.MinRooms)+","+itoa(edges[0])+"]")
	b.labels = append(b.labels, "("+itoa(edges[0])+","+itoa(edges[1])+")")
	for i := 1; i < len(edges)-1; i++ {
		b.labels = append(b.labels, "["+itoa(edges[i])+","+itoa(edges[i+1])+")")
	}
	b.labels = append(b.labels, "["+itoa(edges[len(edges)-1])+","+itoa(colab.MaxRooms)+"]")

	// 第 0 桶含 edges[0] 本身，其餘桶為左閉右開
	b.lut = make([]uint8, colab.MaxRooms+1)
	idx := 0
	for r := range b.lut {
		for idx < len(edges) && uint32(r) > edges[0] && (idx == 0 || uint32(r) >= edges[idx]) {
			idx++
		}
		b.lut[r] = uint8(idx)
	}
	return b
}

func (b *SizeBuckets) Labels() []string { return b.labels }

func (b *SizeBuckets) Len() int { return len(b.labels) }

func (b *SizeBuckets) Index(rooms uint32) int {
	if rooms >= uint32(len(b.lut)) {
		return len(b.labels) - 1
	}
	return int(b.lut[rooms])
}

func itoa(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

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

package core

import (
	"encoding/binary"

	"github.com/zintix-labs/colab/errs"
)

// SnapshotSize 為 Snapshot 輸出的位元組長度。
const SnapshotSize = 16

// State 是生成器的完整狀態 (a, b)。
//
// 以值型別傳遞：每個種子的模擬各自持有一份，不共享、不併發修改。
type State struct {
	A uint64
	B uint64
}

// New 依 32-bit 種子建立初始狀態。
func New(seed uint32) State {
	s := uint64(seed)
	b := (NonZeroDelta(s) - s) * M0
	b = Mix(b) * M0
	a := (RotateLeft64(b, Rot) * M0) | 1 // a 一律為奇數
	b = Mix(b) * M1
	b = (NonZeroDelta(b) - b) * M0
	b = Mix(b) * M0
	b = RotateLeft64(b, Rot) * M0
	return State{A: a, B: b}
}

// FromReseed 以 Reseed 的結果建立狀態。
func FromReseed(v uint64) State {
	a, b := Reseed(v)
	return State{A: a, B: b}
}

// Advance 推進一步。
func (s *State) Advance() {
	a0 := s.A
	s.A = s.B * M1
	s.B = RotateLeft64(s.B-a0, Rot)
}

// Skip 連續推進 n 步，輸出不被使用，但推進後的暫存器會被後續步驟讀取。
func (s *State) Skip(n int) {
	for ; n > 0; n-- {
		s.Advance()
	}
}

// IntRange 以目前的 a 暫存器映射出 [lo, hi] 的整數（含兩端）。
//
// 取 a 的低 32 位乘上區間大小後取高 32 位；區間無法整除 2^32 時會有偏差，
// 這個偏差就是目標生成器的行為。呼叫端保證 hi >= lo。
func (s State) IntRange(lo, hi uint32) uint32 {
	span := uint64(hi-lo) + 1
	return uint32(((s.A&mask32)*span)>>32) + lo
}

// Snapshot 回傳 16 bytes big-endian 的 a||b。
func (s State) Snapshot() []byte {
	b := make([]byte, 0, SnapshotSize)
	b = binary.BigEndian.AppendUint64(b, s.A)
	b = binary.BigEndian.AppendUint64(b, s.B)
	return b
}

// Restore 由 Snapshot 的輸出還原狀態。
func (s *State) Restore(data []byte) error {
	if len(data) != SnapshotSize {
		return errs.Warnf("prng snapshot must be %d bytes, got %d", SnapshotSize, len(data))
	}
	s.A = binary.BigEndian.Uint64(data[:8])
	s.B = binary.BigEndian.Uint64(data[8:])
	return nil
}

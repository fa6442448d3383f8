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

// Package core 重現關卡生成器內部使用的雙暫存器 PRNG。
//
// 所有常數與位移量都必須與目標生成器逐位元一致，不可調整或推導。
// 64-bit 溢位回繞是演算法的一部分，不是錯誤。
package core

import "math/bits"

const (
	M0 uint64 = 0x9E6C63D0676A9A99 // 主乘數
	M1 uint64 = 0xD3833E804F4C574B // 次乘數

	Rot   = 0x1B // 旋轉量 (27)
	MixHi = 0x33 // Mix 高位位移 (51)
	MixLo = 0x17 // Mix 低位位移 (23)

	mask32 uint64 = 0xFFFFFFFF
)

// RotateLeft64 左旋 c mod 64 位。
func RotateLeft64(n uint64, c uint) uint64 {
	return bits.RotateLeft64(n, int(c&63))
}

// Mix 乘法混洗前的高位擴散步驟。
func Mix(a uint64) uint64 {
	return (a >> MixHi) ^ a ^ (a >> MixLo)
}

// NonZeroDelta 為「避免恰好為零」的修正量：v == 0 時回傳 1，否則回傳 0。
//
// 生成器在每次以某個中間值做減法前都會套用這個修正。
func NonZeroDelta(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	return 0
}

// Reseed 以 v 重新派生一組關卡內部狀態 (a, b)。
//
//	b = (Δ(v) - v) * M0
//	b = Mix(b) * M0
//	a = RotateLeft64(b, 27) * M0
//	b = Mix(b)
//
// 最終關卡每層會依序呼叫兩次：一次以折疊後的關卡種子，一次以暖機後的 a。
func Reseed(v uint64) (a, b uint64) {
	b = (NonZeroDelta(v) - v) * M0
	b = Mix(b) * M0
	a = RotateLeft64(b, Rot) * M0
	b = Mix(b)
	return a, b
}

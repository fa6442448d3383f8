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

// Package corefmt 處理種子字串與時間長度等文字格式。
package corefmt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zintix-labs/colab/errs"
)

// SeedLen 為種子字串長度（8 個十六進位字元）。
const SeedLen = 8

// MaxSeed 為種子可定址的上限。
const MaxSeed uint64 = 0xFFFFFFFF

// IsSeedStr 回報 s 是否剛好為 8 個十六進位字元（不分大小寫）。
func IsSeedStr(s string) bool {
	if len(s) != SeedLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return false
		}
	}
	return true
}

// ParseSeed 解析 8 字元十六進位種子。
func ParseSeed(s string) (uint32, error) {
	if !IsSeedStr(s) {
		return 0, errs.NewWithExtra(errs.Warn, "seed must be 8 hex characters", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errs.WrapWithExtra(errs.NewWarn(err.Error()), "parse seed failed", s)
	}
	return uint32(v), nil
}

// FormatSeed 以 8 位大寫十六進位輸出，不帶 0x。
func FormatSeed(seed uint32) string {
	return fmt.Sprintf("%08X", seed)
}

// AppendSeed 將 FormatSeed 的結果附加到 b。
func AppendSeed(b []byte, seed uint32) []byte {
	const digits = "0123456789ABCDEF"
	for shift := 28; shift >= 0; shift -= 4 {
		b = append(b, digits[(seed>>uint(shift))&0xF])
	}
	return b
}

// ClampEnd 將超出可定址範圍的結束種子壓回 MaxSeed。
func ClampEnd(end uint64) uint32 {
	if end > MaxSeed {
		return uint32(MaxSeed)
	}
	return uint32(end)
}

// FormatElapsed 輸出 "D days, HH:MM:SS"，不足一秒捨去。
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	days := total / 86400
	total -= days * 86400
	h := total / 3600
	total -= h * 3600
	m := total / 60
	s := total - m*60
	return fmt.Sprintf("%d days, %02d:%02d:%02d", days, h, m, s)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

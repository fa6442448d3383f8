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
	"strconv"
	"strings"
)

// Theme 為 CO 關卡借用的子主題。
type Theme uint8

const (
	Dwelling Theme = iota
	Jungle
	Volcana
	TidePool
	Temple
	IceCaves
	NeoBabylon
	SunkenCity
)

// Themes 子主題數量
const Themes = 8

var themeNames = [Themes]string{
	"Dwelling", "Jungle", "Volcana", "Tide Pool",
	"Temple", "Ice Caves", "Neo Babylon", "Sunken City",
}

func (t Theme) String() string {
	if int(t) < Themes {
		return themeNames[t]
	}
	return "Theme(" + strconv.Itoa(int(t)) + ")"
}

// ThemeNames 依索引順序回傳所有子主題名稱。
func ThemeNames() []string {
	out := make([]string, Themes)
	copy(out, themeNames[:])
	return out
}

// ParseTheme 以名稱（不分大小寫、可省略空白）取得子主題。
func ParseTheme(s string) (Theme, bool) {
	key := strings.ReplaceAll(strings.ToLower(s), " ", "")
	for i, n := range themeNames {
		if strings.ReplaceAll(strings.ToLower(n), " ", "") == key {
			return Theme(i), true
		}
	}
	return 0, false
}

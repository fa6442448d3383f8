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
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/colab"
	"github.com/zintix-labs/colab/corefmt"
	"github.com/zintix-labs/colab/csvio"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/sdk/levelgen"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// SizeCount 單一房間總數出現的次數
type SizeCount struct {
	Rooms uint32 `json:"Rooms" yaml:"Rooms"`
	Count int    `json:"Count" yaml:"Count"`
}

// Summary 一批結果（CSV 列）的房間總數分布
type Summary struct {
	Count  int     `json:"Count" yaml:"Count"`
	Min    uint32  `json:"Min" yaml:"Min"`
	Max    uint32  `json:"Max" yaml:"Max"`
	Mean   float64 `json:"Mean" yaml:"Mean"`
	MeanCI CI      `json:"MeanCI" yaml:"MeanCI"`
	Std    float64 `json:"Std" yaml:"Std"`
	P01    float64 `json:"P01" yaml:"P01"`
	P10    float64 `json:"P10" yaml:"P10"`
	Median float64 `json:"Median" yaml:"Median"`
	P90    float64 `json:"P90" yaml:"P90"`
	P99    float64 `json:"P99" yaml:"P99"`

	// 分桶落點，標籤見 Buckets.Labels()
	Buckets []string `json:"Buckets" yaml:"Buckets"`
	Dist    []int    `json:"Dist" yaml:"Dist"`

	// 各主題平均出現層數，只計入帶直方圖的列
	ThemeRows int                      `json:"ThemeRows" yaml:"ThemeRows"`
	ThemeMean [levelgen.Themes]float64 `json:"ThemeMean" yaml:"ThemeMean"`

	// 依房間總數遞增
	Sizes []SizeCount `json:"Sizes" yaml:"Sizes"`
}

// Summarize 統計 rows 的房間總數。
func Summarize(rows []csvio.Row) (*Summary, error) {
	if len(rows) == 0 {
		return nil, errs.NewWarn("no rows to summarize")
	}
	s := &Summary{
		Count:   len(rows),
		Min:     math.MaxUint32,
		Buckets: Buckets.Labels(),
		Dist:    make([]int, Buckets.Len()),
	}
	xs := make([]float64, len(rows))
	counts := make(map[uint32]int)
	var themeSum [levelgen.Themes]float64
	for i, r := range rows {
		xs[i] = float64(r.Rooms)
		s.Min = min(s.Min, r.Rooms)
		s.Max = max(s.Max, r.Rooms)
		s.Dist[Buckets.Index(r.Rooms)]++
		counts[r.Rooms]++
		if r.HasThemes {
			s.ThemeRows++
			for t, c := range r.Themes {
				themeSum[t] += float64(c)
			}
		}
	}
	if s.ThemeRows > 0 {
		for t := range themeSum {
			s.ThemeMean[t] = themeSum[t] / float64(s.ThemeRows)
		}
	}

	s.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}
	s.MeanCI = meanCI(s.Mean, s.Std, len(xs))

	slices.Sort(xs)
	s.P01 = stat.Quantile(0.01, stat.Empirical, xs, nil)
	s.P10 = stat.Quantile(0.10, stat.Empirical, xs, nil)
	s.Median = stat.Quantile(0.50, stat.Empirical, xs, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, xs, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, xs, nil)

	s.Sizes = make([]SizeCount, 0, len(counts))
	for rooms, n := range counts {
		s.Sizes = append(s.Sizes, SizeCount{Rooms: rooms, Count: n})
	}
	slices.SortFunc(s.Sizes, func(a, b SizeCount) int { return int(a.Rooms) - int(b.Rooms) })
	return s, nil
}

// 平均值 95% 信賴區間
func meanCI(mean, std float64, n int) CI {
	if n < 2 {
		return CI{Lo: mean, Hi: mean}
	}
	z := distuv.UnitNormal.Quantile(0.975)
	se := std / math.Sqrt(float64(n))
	return CI{Lo: mean - z*se, Hi: mean + z*se}
}

// ============================================================
// ** 表格輸出 **
// ============================================================

// Table 將摘要排成表格。
func (s *Summary) Table(title string) string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Rows":        p.Sprintf("%d", s.Count),
		"Min":         p.Sprintf("%d", s.Min),
		"Max":         p.Sprintf("%d", s.Max),
		"Mean":        p.Sprintf("%.2f", s.Mean),
		"Mean 95% CI": p.Sprintf("[%.2f,%.2f]", s.MeanCI.Lo, s.MeanCI.Hi),
		"STD":         p.Sprintf("%.3f", s.Std),
		"P01":         p.Sprintf("%.0f", s.P01),
		"P10":         p.Sprintf("%.0f", s.P10),
		"Median":      p.Sprintf("%.0f", s.Median),
		"P90":         p.Sprintf("%.0f", s.P90),
		"P99":         p.Sprintf("%.0f", s.P99),
	}
	keys := []string{"Rows", "Min", "Max", "Mean", "Mean 95% CI", "STD", "P01", "P10", "Median", "P90", "P99"}
	for i, label := range s.Buckets {
		if s.Dist[i] == 0 {
			continue
		}
		k := "Rooms " + label
		msg[k] = p.Sprintf("%d", s.Dist[i])
		keys = append(keys, k)
	}
	if s.ThemeRows > 0 {
		for t, name := range levelgen.ThemeNames() {
			k := "Avg " + name
			msg[k] = p.Sprintf("%.2f", s.ThemeMean[t])
			keys = append(keys, k)
		}
	}
	return fmtTable(title, keys, msg)
}

// SizeLines 逐行列出每個房間總數的次數，格式為 "ROOMS: COUNT"。
func (s *Summary) SizeLines() string {
	var sb strings.Builder
	for _, c := range s.Sizes {
		fmt.Fprintf(&sb, "%d: %d\n", c.Rooms, c.Count)
	}
	return sb.String()
}

// SeedTable 單一種子的結果表，含各主題層數。
func SeedTable(r colab.Result) string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Seed":     corefmt.FormatSeed(r.Seed),
		"CO Rooms": p.Sprintf("%d", r.Rooms),
	}
	keys := []string{"Seed", "CO Rooms"}
	for t, name := range levelgen.ThemeNames() {
		msg[name] = p.Sprintf("%d", r.Themes[t])
		keys = append(keys, name)
	}
	dark := "-"
	if r.DarkLevel > 0 {
		dark = p.Sprintf("7-%d", r.DarkLevel)
	}
	msg["Dark Level"] = dark
	keys = append(keys, "Dark Level")
	return fmtTable("Cosmic Ocean "+corefmt.FormatSeed(r.Seed), keys, msg)
}

// ScanTable 範圍掃描的摘要表。
func ScanTable(r colab.SearchResult, used time.Duration) string {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Range":     corefmt.FormatSeed(r.Start) + "-" + corefmt.FormatSeed(r.End),
		"Last Seed": corefmt.FormatSeed(r.Last),
		"Scanned":   p.Sprintf("%d", r.Scanned),
		"Small":     p.Sprintf("%d (<= %d)", len(r.Small), r.SmallMax),
		"Big":       p.Sprintf("%d (>= %d)", len(r.Big), r.BigMin),
		"Capacity":  p.Sprintf("%d", r.Capacity),
		"Stop":      r.Policy,
		"Truncated": fmt.Sprintf("%v", r.Truncated),
		"Elapsed":   corefmt.FormatElapsed(used),
		"Seeds/sec": p.Sprintf("%d", rate(r.Scanned, used)),
	}
	keys := []string{"Range", "Last Seed", "Scanned", "Small", "Big", "Capacity", "Stop", "Truncated", "Elapsed", "Seeds/sec"}
	return fmtTable("CO Room Scan", keys, msg)
}

// FormatDuration 回傳耗時與每秒種子數兩行文字。
func FormatDuration(d time.Duration, seeds uint64) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	sps := rate(seeds, d)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nsps : %d seeds/sec\n", sec, sps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nsps : %d seeds/sec\n", m, s, sps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nsps : %d seeds/sec\n", h, m, s, sps)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func rate(n uint64, d time.Duration) int64 {
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	return int64(float64(n) / sec)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

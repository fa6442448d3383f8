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

package csvio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/zintix-labs/colab/corefmt"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/sdk/levelgen"
)

// Row 結果檔的一列
type Row struct {
	Seed      uint32
	Rooms     uint32
	Themes    [levelgen.Themes]uint16
	HasThemes bool
}

// Writer 以行為單位輸出結果。
type Writer struct {
	bw  *bufio.Writer
	buf []byte
	n   int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w), buf: make([]byte, 0, 64)}
}

// WriteRow 輸出 `SEED,COUNT`；HasThemes 時附上 8 個以 %2d 寬度輸出的主題計數。
func (w *Writer) WriteRow(r Row) error {
	b := corefmt.AppendSeed(w.buf[:0], r.Seed)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(r.Rooms), 10)
	if r.HasThemes {
		for _, c := range r.Themes {
			b = append(b, ',')
			if c < 10 {
				b = append(b, ' ')
			}
			b = strconv.AppendUint(b, uint64(c), 10)
		}
	}
	b = append(b, '\n')
	w.buf = b
	if _, err := w.bw.Write(b); err != nil {
		return errs.Wrap(err, "write row failed")
	}
	w.n++
	return nil
}

// Rows 回傳已寫出的列數。
func (w *Writer) Rows() int { return w.n }

func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return errs.Wrap(err, "flush rows failed")
	}
	return nil
}

// SeedScanner 逐行讀取種子清單。
//
// 每行取第一個欄位（逗號或空白之前）作為種子，其餘資料忽略；空行略過。
type SeedScanner struct {
	sc   *bufio.Scanner
	line int
	seed uint32
	row  string
	err  error
}

func NewSeedScanner(r io.Reader) *SeedScanner {
	return &SeedScanner{sc: bufio.NewScanner(r)}
}

// Scan 前進到下一個種子；遇到錯誤或結尾回傳 false，錯誤由 Err 取得。
func (s *SeedScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.sc.Scan() {
		s.line++
		text := strings.TrimSpace(s.sc.Text())
		if text == "" {
			continue
		}
		field := firstField(text)
		seed, err := corefmt.ParseSeed(field)
		if err != nil {
			s.err = errs.WrapWithExtra(err, "invalid seed line", "line "+strconv.Itoa(s.line))
			return false
		}
		s.seed = seed
		s.row = text
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = errs.Wrap(err, "read seed lines failed")
	}
	return false
}

func (s *SeedScanner) Seed() uint32 { return s.seed }

// Text 回傳目前這一行（已去除前後空白）。
func (s *SeedScanner) Text() string { return s.row }

// Line 回傳目前行號（1-based）。
func (s *SeedScanner) Line() int { return s.line }

func (s *SeedScanner) Err() error { return s.err }

// ReadRows 讀取完整結果檔；COUNT 欄位必須存在，主題欄位為選用（剛好 8 個）。
func ReadRows(r io.Reader) ([]Row, error) {
	var out []Row
	sc := NewSeedScanner(r)
	for sc.Scan() {
		row, err := parseRow(sc.Seed(), sc.Text())
		if err != nil {
			return nil, errs.WrapWithExtra(err, "invalid result row", "line "+strconv.Itoa(sc.Line()))
		}
		out = append(out, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRow(seed uint32, text string) (Row, error) {
	row := Row{Seed: seed}
	parts := strings.Split(text, ",")
	if len(parts) < 2 {
		return row, errs.NewWarn("missing room count")
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return row, errs.NewWithExtra(errs.Warn, "room count must be integer", parts[1])
	}
	row.Rooms = uint32(n)
	rest := parts[2:]
	if len(rest) == 0 {
		return row, nil
	}
	if len(rest) != levelgen.Themes {
		return row, errs.Warnf("expected %d theme counts, got %d", levelgen.Themes, len(rest))
	}
	for i, p := range rest {
		c, err := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if err != nil {
			return row, errs.NewWithExtra(errs.Warn, "theme count must be integer", p)
		}
		row.Themes[i] = uint16(c)
	}
	row.HasThemes = true
	return row, nil
}

func firstField(s string) string {
	if i := strings.IndexAny(s, ", \t"); i >= 0 {
		return s[:i]
	}
	return s
}

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

// Package scancfg 讀取範圍掃描的設定（YAML / JSON），並補上預設值。
package scancfg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zintix-labs/colab/corefmt"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/recorder"
	"gopkg.in/yaml.v3"
)

// 預設值沿用原始搜尋工具
const (
	DefaultSmallMax uint32 = 1400
	DefaultBigMin   uint32 = 2000
	DefaultCapacity        = 250000
	DefaultChunk           = 1 << 16
	DefaultOutput          = "co_seeds.csv"
)

// ScanSetting 範圍掃描設定
type ScanSetting struct {
	Start    string `yaml:"start" json:"start"` // 8 字元十六進位
	End      string `yaml:"end" json:"end"`     // 8 字元十六進位，含端點
	SmallMax uint32 `yaml:"small_max" json:"small_max"`
	BigMin   uint32 `yaml:"big_min" json:"big_min"`
	Capacity int    `yaml:"capacity" json:"capacity"`
	Workers  int    `yaml:"workers" json:"workers"`
	Chunk    int    `yaml:"chunk" json:"chunk"`
	Stop     string `yaml:"stop" json:"stop"` // any | both
	Output   string `yaml:"output" json:"output"`

	StartSeed uint32              `yaml:"-" json:"-"`
	EndSeed   uint32              `yaml:"-" json:"-"`
	Policy    recorder.StopPolicy `yaml:"-" json:"-"`
	ready     bool
}

// Default 回傳全範圍、預設門檻的設定（尚未 Init）。
func Default() *ScanSetting {
	return &ScanSetting{
		Start:    "00000000",
		End:      "FFFFFFFF",
		SmallMax: DefaultSmallMax,
		BigMin:   DefaultBigMin,
		Capacity: DefaultCapacity,
		Chunk:    DefaultChunk,
		Stop:     "any",
		Output:   DefaultOutput,
	}
}

// GetScanSettingByYAML 讀取 YAML 設定；未給的欄位沿用 Default。
func GetScanSettingByYAML(data []byte) (*ScanSetting, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errs.WrapWithExtra(errs.NewWarn(err.Error()), "failed to unmarshal yaml", "scan setting")
	}
	if err := s.Init(); err != nil {
		return nil, errs.Wrap(err, "scan setting initialized err")
	}
	return s, nil
}

// GetScanSettingByJSON 讀取 JSON 設定；未給的欄位沿用 Default。
func GetScanSettingByJSON(data []byte) (*ScanSetting, error) {
	s := Default()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errs.WrapWithExtra(errs.NewWarn(err.Error()), "can not unmarshal json", "scan setting")
	}
	if err := s.Init(); err != nil {
		return nil, errs.Wrap(err, "scan setting initialized err")
	}
	return s, nil
}

// LoadFile 依副檔名（.yaml/.yml/.json）讀取設定檔。
func LoadFile(path string) (*ScanSetting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "read scan setting failed", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return GetScanSettingByJSON(data)
	case ".yaml", ".yml":
		return GetScanSettingByYAML(data)
	default:
		return nil, errs.NewWithExtra(errs.Warn, "scan setting must be .yaml, .yml or .json", path)
	}
}

// Init 解析種子與停止策略並檢查範圍，可重複呼叫。
func (s *ScanSetting) Init() error {
	start, err := corefmt.ParseSeed(s.Start)
	if err != nil {
		return errs.Wrap(err, "invalid start seed")
	}
	end, err := corefmt.ParseSeed(s.End)
	if err != nil {
		return errs.Wrap(err, "invalid end seed")
	}
	if start > end {
		return errs.Warnf("start seed %s is after end seed %s", s.Start, s.End)
	}
	policy, err := recorder.ParseStopPolicy(s.Stop)
	if err != nil {
		return err
	}
	if s.Capacity < 1 {
		return errs.Warnf("capacity must > 0, got %d", s.Capacity)
	}
	if s.Workers < 1 {
		s.Workers = runtime.GOMAXPROCS(0)
	}
	if s.Chunk < 1 {
		s.Chunk = DefaultChunk
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	s.StartSeed = start
	s.EndSeed = end
	s.Policy = policy
	s.ready = true
	return nil
}

// Ready 回報是否已通過 Init。
func (s *ScanSetting) Ready() bool { return s != nil && s.ready }

// Seeds 回傳範圍內的種子數。
func (s *ScanSetting) Seeds() uint64 {
	return uint64(s.EndSeed) - uint64(s.StartSeed) + 1
}

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

package svrcfg

import (
	"testing"

	"github.com/zintix-labs/colab/server/logger"
)

func TestValidDefaults(t *testing.T) {
	sc := &SvrCfg{}
	if err := sc.Valid(); err != nil {
		t.Fatal(err)
	}
	if sc.Log == nil || sc.MaxScan != DefaultMaxScan || sc.ScanTimeout != DefaultScanTimeout || sc.Workers < 1 {
		t.Fatalf("defaults not applied: %+v", sc)
	}
	if sc.MaxBody != DefaultMaxBody {
		t.Fatalf("rederive defaults: %+v", sc)
	}
}

func TestValidKeepsValues(t *testing.T) {
	log, ah := logger.NewAsync(16, logger.ModeSilence)
	defer ah.Close()
	sc := &SvrCfg{Log: log, MaxScan: 10, Workers: 2}
	if err := sc.Valid(); err != nil {
		t.Fatal(err)
	}
	if sc.Log != log || sc.MaxScan != 10 || sc.Workers != 2 {
		t.Fatalf("values overwritten: %+v", sc)
	}
}

func TestValidNil(t *testing.T) {
	var sc *SvrCfg
	if err := sc.Valid(); err == nil {
		t.Fatal("nil config must fail")
	}
}

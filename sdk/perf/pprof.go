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

// Package perf 以 pprof 包裝 CLI 的一次執行，產出可給 go tool pprof 或 PGO 使用的檔案。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/colab/errs"
)

// Dir pprof 檔案寫入路徑
var Dir = "build/profiling"

// RunPProf 依 mode 決定以哪種 profiling 包裝 exe：
//
//	""      直接執行
//	cpu     執行期間 CPU profile -> cpu.pprof
//	heap    執行後 GC 再寫 in-use 快照 -> heap.pprof
//	allocs  執行後寫累積配置 -> allocs.pprof
//
// exe 的錯誤優先回傳；profiling 本身的錯誤以 Fatal 回傳。
func RunPProf(exe func() error, mode string) error {
	switch mode {
	case "":
		return exe()
	case "cpu":
		return PProfCPU(exe)
	case "heap":
		return snapshot(exe, "heap")
	case "allocs":
		return snapshot(exe, "allocs")
	default:
		return errs.NewWithExtra(errs.Warn, "pprof mode must be cpu, heap or allocs", mode)
	}
}

// PProfCPU 在 exe 執行期間收集 CPU profile。
//
// Usage like:
//
//	go run ./cmd/colab -p cpu 00000000 000FFFFF
func PProfCPU(exe func() error) error {
	f, err := create("cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "failed to start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// heap 快照前先 GC，讓 live objects 貼近最新狀態；allocs 需搭配 -sample_index=alloc_space 查看
func snapshot(exe func() error, name string) error {
	runErr := exe()

	if name == "heap" {
		runtime.GC()
	}
	f, err := create(name)
	if err != nil {
		return first(runErr, err)
	}
	defer f.Close()
	if err := pprof.Lookup(name).WriteTo(f, 0); err != nil {
		return first(runErr, errs.Wrap(err, "failed to write "+name+" profile"))
	}
	return runErr
}

func create(name string) (*os.File, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return nil, errs.WrapWithExtra(err, "create profiling dir failed", Dir)
	}
	path := filepath.Join(Dir, name+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "create profile failed", path)
	}
	return f, nil
}

func first(runErr, profErr error) error {
	if runErr != nil {
		return runErr
	}
	return profErr
}

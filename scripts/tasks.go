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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// lineFilter 回傳 false 表示該行不印；為 nil 時原樣輸出
type lineFilter func(line string) bool

// goCmd 執行 go 子命令，stdout/stderr 合併後逐行過濾並上色
func goCmd(filter lineFilter, args ...string) error {
	cmd := exec.Command("go", args...)
	if filter == nil {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		line := sc.Text()
		if !filter(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			PrintRed(line)
		default:
			fmt.Println(line)
		}
	}
	return cmd.Wait()
}

func cleanCache() {
	// 清除失敗不中斷測試
	if err := goCmd(nil, "clean", "-testcache"); err != nil {
		PrintYellow("go clean -testcache: " + err.Error())
	}
}

func runTest() error {
	PrintGreen("running tests")
	cleanCache()
	// 只留 ok / FAIL 與編譯錯誤，其他行太吵
	err := goCmd(func(l string) bool {
		return strings.HasPrefix(l, "ok") || strings.HasPrefix(l, "FAIL") ||
			strings.Contains(l, "build failed") || strings.Contains(l, "setup failed")
	}, "test", "./...", "-cover", "-count=1")
	if err != nil {
		return errors.New("tests finished with errors")
	}
	return nil
}

func runTestAll() error {
	PrintGreen("running tests (all with coverage)")
	cleanCache()
	if err := goCmd(nil, "test", "./...", "-cover"); err != nil {
		return errors.New("tests (with coverage) finished with errors")
	}
	return nil
}

func runTestDetail() error {
	PrintGreen("running tests (detail)")
	cleanCache()
	err := goCmd(func(l string) bool { return !strings.Contains(l, "[no test files]") }, "test", "./...", "-v", "-count=1")
	if err != nil {
		return errors.New("tests (detail) finished with errors")
	}
	return nil
}

func runBench() error {
	PrintGreen("running benchmarks")
	return goCmd(func(l string) bool { return !strings.Contains(l, "[no test files]") },
		"test", "-run=^$", "-bench=.", "-benchmem", "./sdk/core", "./sdk/levelgen", ".")
}

// runPGO 掃 0x00000000-0x000FFFFF 收集 CPU profile，複製成 cmd/colab/default.pgo 供 go build -pgo=auto 使用
func runPGO() error {
	PrintGreen("collecting cpu profile")
	out := os.TempDir() + "/colab_pgo.csv"
	if err := goCmd(nil, "run", "./cmd/colab", "-p", "cpu", "-pb=false", "-out", out, "00000000", "000FFFFF"); err != nil {
		return err
	}
	data, err := os.ReadFile("build/profiling/cpu.pprof")
	if err != nil {
		return err
	}
	if err := os.WriteFile("cmd/colab/default.pgo", data, 0o644); err != nil {
		return err
	}
	PrintGreen("wrote cmd/colab/default.pgo")
	return nil
}

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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/colab"
	"github.com/zintix-labs/colab/corefmt"
	"github.com/zintix-labs/colab/csvio"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/scancfg"
	"github.com/zintix-labs/colab/sdk/levelgen"
	"github.com/zintix-labs/colab/server/logger"
	"github.com/zintix-labs/colab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	workers   int
	config    string
	small     uint
	big       uint
	capacity  int
	chunk     int
	stop      string
	out       string
	showpb    bool
	logMode   string
	pprofmode string
	trace     bool
	rederive  string
	summary   string
	format    string

	set map[string]bool // 命令列上明確給過的 flag
}

const usage = `Usage: colab <start_seed> <end_seed>
       colab <seed>
       colab -rederive <seeds.csv> [-out <file>]   (default out: <seeds>_themes.csv)
       colab -summary <results.csv> [-format table|json|yaml]
Seeds should be 8-character seeds from Spelunky 2
`

func bindVar() {
	bindFlags(flag.CommandLine, cfg)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	cfg.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
}

func flagArgs() []string { return flag.Args() }

func bindFlags(fs *flag.FlagSet, c *config) {
	fs.IntVar(&c.workers, "workers", 0, "number of scan workers (0 = GOMAXPROCS)")
	fs.StringVar(&c.config, "config", "", "scan setting file (.yaml/.yml/.json)")
	fs.UintVar(&c.small, "small", uint(scancfg.DefaultSmallMax), "record seeds with at most this many CO rooms")
	fs.UintVar(&c.big, "big", uint(scancfg.DefaultBigMin), "record seeds with at least this many CO rooms")
	fs.IntVar(&c.capacity, "cap", scancfg.DefaultCapacity, "max seeds kept per bucket")
	fs.IntVar(&c.chunk, "chunk", scancfg.DefaultChunk, "seeds per work unit")
	fs.StringVar(&c.stop, "stop", "any", "stop policy: any|both")
	fs.StringVar(&c.out, "out", "", "output csv (.gz/.zst compressed)")
	fs.BoolVar(&c.showpb, "pb", true, "show progress bar")
	fs.StringVar(&c.logMode, "log-mode", "silence", "log mode: dev|prod|silence")
	fs.StringVar(&c.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	fs.BoolVar(&c.trace, "trace", false, "list every CO level of a single seed")
	fs.StringVar(&c.rederive, "rederive", "", "recompute counts and theme histograms for seeds in file")
	fs.StringVar(&c.summary, "summary", "", "print size distribution of a results file")
	fs.StringVar(&c.format, "format", "table", "summary format: table|json|yaml")
}

// run 依參數決定模式：批次重算、分布摘要、單一種子或範圍掃描
func run(ctx context.Context, c *config, args []string, stdout io.Writer) error {
	p := message.NewPrinter(language.English)
	p.Fprintf(stdout, "Spelunky 2 level gen simulator %s\n", colab.Version)

	mode, err := logger.ParseMode(c.logMode)
	if err != nil {
		return err
	}
	log := logger.NewWriterLogger(os.Stderr, mode)

	switch {
	case c.rederive != "":
		return runRederive(ctx, c, log, stdout)
	case c.summary != "":
		return runSummary(c, stdout)
	case len(args) == 1 && corefmt.IsSeedStr(args[0]):
		return runSeed(c, args[0], stdout)
	case len(args) >= 2 && corefmt.IsSeedStr(args[0]) && corefmt.IsSeedStr(args[1]):
		return runScan(ctx, c, log, args[0], args[1], stdout)
	}
	fmt.Fprint(stdout, usage)
	return errs.NewWarn("invalid arguments")
}

func runSeed(c *config, arg string, stdout io.Writer) error {
	seed, err := corefmt.ParseSeed(arg)
	if err != nil {
		return err
	}
	res := colab.Analyze(seed)
	fmt.Fprintf(stdout, "%s has %d CO rooms\n", corefmt.FormatSeed(seed), res.Rooms)
	fmt.Fprint(stdout, stats.SeedTable(res))
	if c.trace {
		for l := range levelgen.Levels(seed) {
			fmt.Fprintf(stdout, "%s  state=%x\n", l, l.State.Snapshot())
		}
	}
	return nil
}

func runScan(ctx context.Context, c *config, log *slog.Logger, from, to string, stdout io.Writer) error {
	set, err := c.scanSetting(from, to)
	if err != nil {
		return err
	}
	s := colab.NewSearcher(colab.WithLogger(log), colab.WithProgress(c.showpb))
	res, used, scanErr := s.SearchMP(ctx, set)
	if scanErr != nil && errs.Level(scanErr) == errs.Warn {
		return scanErr
	}

	// 中斷時仍寫出已合併的部分結果
	if err := writeResult(set.Output, &res); err != nil {
		return err
	}
	p := message.NewPrinter(language.English)
	fmt.Fprintf(stdout, "Seeds %s-%s searched in %s\n", corefmt.FormatSeed(res.Start), corefmt.FormatSeed(res.Last), corefmt.FormatElapsed(used))
	p.Fprintf(stdout, "%d with fewer than %d CO rooms.\n", len(res.Small), res.SmallMax)
	p.Fprintf(stdout, "%d with greater than %d CO rooms.\n", len(res.Big), res.BigMin)
	fmt.Fprint(stdout, stats.ScanTable(res, used))
	fmt.Fprintf(stdout, "results written to %s\n", set.Output)
	return scanErr
}

// scanSetting 合併設定檔與命令列：命令列明確給的值優先，種子範圍一律取自參數
func (c *config) scanSetting(from, to string) (*scancfg.ScanSetting, error) {
	set := scancfg.Default()
	set.Output = defaultOutput()
	if c.config != "" {
		loaded, err := scancfg.LoadFile(c.config)
		if err != nil {
			return nil, err
		}
		set = loaded
	}
	set.Start, set.End = from, to
	if c.given("small") || c.config == "" {
		set.SmallMax = uint32(c.small)
	}
	if c.given("big") || c.config == "" {
		set.BigMin = uint32(c.big)
	}
	if c.given("cap") || c.config == "" {
		set.Capacity = c.capacity
	}
	if c.given("chunk") || c.config == "" {
		set.Chunk = c.chunk
	}
	if c.given("stop") || c.config == "" {
		set.Stop = c.stop
	}
	if c.given("workers") || c.config == "" {
		set.Workers = c.workers
	}
	if c.out != "" {
		set.Output = c.out
	}
	if err := set.Init(); err != nil {
		return nil, err
	}
	return set, nil
}

func (c *config) given(name string) bool { return c.set[name] }

func writeResult(path string, res *colab.SearchResult) error {
	f, err := csvio.Create(path)
	if err != nil {
		return err
	}
	if err := res.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.WrapWithExtra(err, "close output failed", path)
	}
	return nil
}

func runRederive(ctx context.Context, c *config, log *slog.Logger, stdout io.Writer) error {
	in, err := csvio.Open(c.rederive)
	if err != nil {
		return err
	}
	defer in.Close()

	outPath := c.out
	if outPath == "" {
		outPath = rederiveOutput(c.rederive)
	}
	// 建立輸出會截斷檔案，必須在讀取之前擋下
	same, err := sameFile(c.rederive, outPath)
	if err != nil {
		return err
	}
	if same {
		return errs.NewWithExtra(errs.Warn, "rederive output would overwrite its input", outPath)
	}
	out, err := csvio.Create(outPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Calculating theme counts for seeds read from %s\n", c.rederive)
	s := colab.NewSearcher(colab.WithLogger(log), colab.WithProgress(c.showpb))
	n, err := s.Rederive(ctx, in, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errs.WrapWithExtra(cerr, "close output failed", outPath)
	}
	if err != nil {
		return err
	}
	message.NewPrinter(language.English).Fprintf(stdout, "%d seeds written to %s\n", n, outPath)
	return nil
}

func runSummary(c *config, stdout io.Writer) error {
	in, err := csvio.Open(c.summary)
	if err != nil {
		return err
	}
	defer in.Close()
	rows, err := csvio.ReadRows(in)
	if err != nil {
		return errs.WrapWithExtra(err, "read results failed", c.summary)
	}
	sum, err := stats.Summarize(rows)
	if err != nil {
		return err
	}
	if c.format == "" || c.format == "table" {
		fmt.Fprint(stdout, sum.Table(c.summary))
		fmt.Fprint(stdout, sum.SizeLines())
		return nil
	}
	render, ok := stats.RenderFor(c.format)
	if !ok {
		return errs.NewWithExtra(errs.Warn, "format must be table, json or yaml", c.format)
	}
	return sum.WriteWith(stdout, render)
}

func defaultOutput() string {
	return "co_seeds_" + colab.Version + ".csv"
}

// rederiveOutput 由輸入檔名推出輸出檔名：co_seeds.csv.gz -> co_seeds_themes.csv.gz
func rederiveOutput(in string) string {
	dir, base := filepath.Split(in)
	comp := ""
	for _, ext := range []string{".gz", ".zst"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			comp = base[len(base)-len(ext):]
			base = base[:len(base)-len(ext)]
			break
		}
	}
	if strings.EqualFold(filepath.Ext(base), ".csv") {
		base = base[:len(base)-len(".csv")]
	}
	return filepath.Join(dir, base+"_themes.csv"+comp)
}

// sameFile 回報兩個路徑是否指向同一個檔案；b 不存在時為 false
func sameFile(a, b string) (bool, error) {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true, nil
	}
	sa, err := os.Stat(a)
	if err != nil {
		return false, errs.WrapWithExtra(err, "stat input failed", a)
	}
	sb, err := os.Stat(b)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errs.WrapWithExtra(err, "stat output failed", b)
	}
	return os.SameFile(sa, sb), nil
}

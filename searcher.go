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

package colab

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/colab/corefmt"
	"github.com/zintix-labs/colab/csvio"
	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/recorder"
	"github.com/zintix-labs/colab/scancfg"
)

// ctxCheckEvery 每分析多少個種子檢查一次取消訊號
const ctxCheckEvery = 1 << 10

// Searcher 平行掃描器：把種子範圍切成固定大小的區段交給多個 worker，
// 每個 worker 各自持有桶，最後依種子順序合併，結果與 Search 逐筆相同。
type Searcher struct {
	log    *slog.Logger
	showpb bool
}

// Option 設定 Searcher
type Option func(*Searcher)

// WithLogger 指定 logger；nil 代表不輸出。
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.log = l
		}
	}
}

// WithProgress 是否在終端顯示進度條。
func WithProgress(show bool) Option {
	return func(s *Searcher) { s.showpb = show }
}

func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}
	return s
}

type chunkResult struct {
	idx  uint64
	last uint32 // 區段內最後分析的種子
	b    *recorder.Buckets
}

// SearchMP 依 set 平行掃描，回傳結果與用時。
//
// 區段依序派發；合併端以重排緩衝依區段順序套用停止規則，一旦停止就不再派發新區段。
// 外部 ctx 取消時回傳已依序合併的部分結果與錯誤。
func (s *Searcher) SearchMP(ctx context.Context, set *scancfg.ScanSetting) (SearchResult, time.Duration, error) {
	if set == nil {
		return SearchResult{}, 0, errs.NewWarn("scan setting is required")
	}
	if !set.Ready() {
		if err := set.Init(); err != nil {
			return SearchResult{}, 0, err
		}
	}
	global, err := recorder.NewBuckets(set.SmallMax, set.BigMin, set.Capacity, set.Policy)
	if err != nil {
		return SearchResult{}, 0, err
	}
	res := newSearchResult(set.StartSeed, set.EndSeed, global)

	total := set.Seeds()
	chunk := uint64(set.Chunk)
	chunks := (total + chunk - 1) / chunk
	workers := uint64(max(1, set.Workers))
	workers = min(workers, chunks)

	s.log.Info("scan.start",
		slog.String("start", corefmt.FormatSeed(set.StartSeed)),
		slog.String("end", corefmt.FormatSeed(set.EndSeed)),
		slog.Uint64("seeds", total),
		slog.Uint64("workers", workers),
		slog.Int("small_max", int(set.SmallMax)),
		slog.Int("big_min", int(set.BigMin)),
		slog.Int("capacity", set.Capacity),
		slog.String("stop", set.Policy.String()),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	bar := pb.New64(int64(total))
	if !s.showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	jobs := make(chan uint64)
	results := make(chan chunkResult, workers)
	wg := new(sync.WaitGroup)
	wg.Add(int(workers))
	for w := uint64(0); w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				lo := uint64(set.StartSeed) + idx*chunk
				hi := min(lo+chunk-1, uint64(set.EndSeed))
				cr, n, ok := scanChunk(runCtx, global.Fresh(), idx, lo, hi)
				bar.Add64(int64(n))
				if !ok {
					return
				}
				select {
				case results <- cr:
				case <-runCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := uint64(0); idx < chunks; idx++ {
			select {
			case jobs <- idx:
			case <-runCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	pending := make(map[uint64]chunkResult, workers)
	next := uint64(0)
	merged := false
	stopped := false
	for cr := range results {
		if stopped {
			continue
		}
		pending[cr.idx] = cr
		for !stopped {
			c, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			merged = true
			if done, at := global.Replay(c.b); done {
				stopped = true
				res.Last = at
				res.Truncated = true
				cancel()
				break
			}
			res.Last = c.last
		}
	}
	used := time.Since(bar.StartTime())
	bar.Finish()

	if merged {
		res.Scanned = uint64(res.Last) - uint64(res.Start) + 1
	}
	res.Small, res.Big = global.Small, global.Big

	if !stopped && next < chunks {
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		s.log.Warn("scan.canceled", slog.String("last", corefmt.FormatSeed(res.Last)), slog.Any("err", err))
		return res, used, errs.Wrap(err, "scan canceled")
	}

	s.log.Info("scan.done",
		slog.String("last", corefmt.FormatSeed(res.Last)),
		slog.Uint64("scanned", res.Scanned),
		slog.Int("small", len(res.Small)),
		slog.Int("big", len(res.Big)),
		slog.Bool("truncated", res.Truncated),
		slog.Duration("elapsed", used),
	)
	return res, used, nil
}

// scanChunk 以空桶 b 掃描 [lo, hi]，回傳實際分析的種子數；ok 為 false 代表途中被取消，結果不可用。
func scanChunk(ctx context.Context, b *recorder.Buckets, idx, lo, hi uint64) (cr chunkResult, n uint64, ok bool) {
	cr = chunkResult{idx: idx, last: uint32(hi), b: b}
	for seed := lo; seed <= hi; seed++ {
		if n%ctxCheckEvery == 0 && ctx.Err() != nil {
			return cr, n, false
		}
		r := Analyze(uint32(seed))
		n++
		if b.Wants(r.Rooms) && b.Record(r.Hit()) {
			cr.last = uint32(seed)
			break
		}
	}
	return cr, n, true
}

// Rederive 讀取種子清單並重新分析，輸出含主題計數的結果列，回傳輸出列數。
//
// 用於替舊版（未記錄主題）收集的種子補上主題分布。
func (s *Searcher) Rederive(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	sc := csvio.NewSeedScanner(r)
	cw := csvio.NewWriter(w)

	bar := pb.New(0)
	if !s.showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()
	defer bar.Finish()

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return cw.Rows(), errs.Wrap(err, "rederive canceled")
		}
		if err := cw.WriteRow(Analyze(sc.Seed()).Row()); err != nil {
			return cw.Rows(), err
		}
		bar.Increment()
	}
	if err := sc.Err(); err != nil {
		return cw.Rows(), err
	}
	if err := cw.Flush(); err != nil {
		return cw.Rows(), err
	}
	s.log.Info("rederive.done", slog.Int("rows", cw.Rows()), slog.Duration("elapsed", time.Since(bar.StartTime())))
	return cw.Rows(), nil
}

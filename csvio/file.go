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

// Package csvio 讀寫 `SEED_HEX,COUNT[,h0..h7]` 格式的結果檔。
//
// 路徑以 .gz / .zst 結尾時自動以 gzip / zstd 壓縮或解壓。
package csvio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/colab/errs"
)

// Codec 檔案壓縮格式
type Codec uint8

const (
	Plain Codec = iota
	Gzip
	Zstd
)

// CodecOf 依副檔名判斷壓縮格式。
func CodecOf(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	default:
		return Plain
	}
}

type fileWriter struct {
	f  *os.File
	bw *bufio.Writer
	cw io.WriteCloser // 壓縮層，Plain 時為 nil
}

func (w *fileWriter) Write(p []byte) (int, error) { return w.bw.Write(p) }

// Close 依序 flush 緩衝、關閉壓縮層與檔案，回傳第一個錯誤。
func (w *fileWriter) Close() error {
	err := w.bw.Flush()
	if w.cw != nil {
		if cerr := w.cw.Close(); err == nil {
			err = cerr
		}
	}
	if ferr := w.f.Close(); err == nil {
		err = ferr
	}
	if err != nil {
		return errs.WrapWithExtra(err, "close output failed", w.f.Name())
	}
	return nil
}

// Create 建立輸出檔（必要時建立目錄）。
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.WrapWithExtra(err, "create output dir failed", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "create output failed", path)
	}
	w := &fileWriter{f: f}
	switch CodecOf(path) {
	case Gzip:
		w.cw = gzip.NewWriter(f)
	case Zstd:
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return nil, errs.WrapWithExtra(err, "init zstd writer failed", path)
		}
		w.cw = zw
	}
	if w.cw != nil {
		w.bw = bufio.NewWriter(w.cw)
	} else {
		w.bw = bufio.NewWriter(f)
	}
	return w, nil
}

type fileReader struct {
	f  *os.File
	r  io.Reader
	cl func()
}

func (r *fileReader) Read(p []byte) (int, error) { return r.r.Read(p) }

func (r *fileReader) Close() error {
	if r.cl != nil {
		r.cl()
	}
	return r.f.Close()
}

// Open 開啟輸入檔，依副檔名解壓。
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "open input failed", path)
	}
	fr := &fileReader{f: f, r: f}
	switch CodecOf(path) {
	case Gzip:
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errs.WrapWithExtra(err, "init gzip reader failed", path)
		}
		fr.r = gr
		fr.cl = func() { _ = gr.Close() }
	case Zstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errs.WrapWithExtra(err, "init zstd reader failed", path)
		}
		fr.r = zr
		fr.cl = zr.Close
	}
	return fr, nil
}

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

package csvio_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zintix-labs/colab/csvio"
	"github.com/zintix-labs/colab/errs"
)

func TestWriteRowFormat(t *testing.T) {
	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	if err := w.WriteRow(csvio.Row{Seed: 0x5365, Rooms: 1367}); err != nil {
		t.Fatal(err)
	}
	r := csvio.Row{Seed: 0, Rooms: 1583, Themes: [8]uint16{11, 15, 11, 10, 12, 10, 12, 13}, HasThemes: true}
	if err := w.WriteRow(r); err != nil {
		t.Fatal(err)
	}
	r.Themes[0] = 9
	r.Seed = 0xDEADBEEF
	if err := w.WriteRow(r); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "00005365,1367\n" +
		"00000000,1583,11,15,11,10,12,10,12,13\n" +
		"DEADBEEF,1583, 9,15,11,10,12,10,12,13\n"
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
	if w.Rows() != 3 {
		t.Fatalf("rows %d", w.Rows())
	}
}

func TestSeedScannerIgnoresTrailingData(t *testing.T) {
	in := "00005365,1367\n\n  deadbeef extra words\nFFFFFFFF\n"
	sc := csvio.NewSeedScanner(strings.NewReader(in))
	var got []uint32
	for sc.Scan() {
		got = append(got, sc.Seed())
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	want := []uint32{0x5365, 0xDEADBEEF, 0xFFFFFFFF}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v", got)
		}
	}
}

func TestSeedScannerRejectsBadLine(t *testing.T) {
	sc := csvio.NewSeedScanner(strings.NewReader("00000001\n5365,12\n00000002\n"))
	n := 0
	for sc.Scan() {
		n++
	}
	if n != 1 {
		t.Fatalf("must stop at bad line, scanned %d", n)
	}
	err := sc.Err()
	if err == nil || !errs.IsWarn(err) || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("unexpected err %v", err)
	}
}

func TestReadRows(t *testing.T) {
	in := "00000000,1583,11,15,11,10,12,10,12,13\n00005365,1367\n"
	rows, err := csvio.ReadRows(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || !rows[0].HasThemes || rows[1].HasThemes || rows[1].Rooms != 1367 || rows[0].Themes[7] != 13 {
		t.Fatalf("rows %+v", rows)
	}
	for _, bad := range []string{"00000000\n", "00000000,abc\n", "00000000,1,2,3\n"} {
		if _, err := csvio.ReadRows(strings.NewReader(bad)); err == nil {
			t.Fatalf("%q must fail", bad)
		}
	}
}

func TestCompressedFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv.gz", "sub/c.csv.zst"} {
		path := filepath.Join(dir, name)
		f, err := csvio.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		w := csvio.NewWriter(f)
		for i := uint32(0); i < 100; i++ {
			if err := w.WriteRow(csvio.Row{Seed: i, Rooms: 1000 + i}); err != nil {
				t.Fatal(err)
			}
		}
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}

		rc, err := csvio.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		rows, err := csvio.ReadRows(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(rows) != 100 || rows[99].Seed != 99 || rows[99].Rooms != 1099 {
			t.Fatalf("%s: rows %d", name, len(rows))
		}
	}
}

func TestCodecOf(t *testing.T) {
	if csvio.CodecOf("x.CSV.GZ") != csvio.Gzip || csvio.CodecOf("x.zst") != csvio.Zstd || csvio.CodecOf("x.csv") != csvio.Plain {
		t.Fatalf("codec by suffix")
	}
	if _, err := csvio.Open(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("missing file must fail")
	}
}

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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{"": ModeDev, "dev": ModeDev, "PROD": ModeProd, " silence ": ModeSilence, "silent": ModeSilence}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
		if got.String() == "unknown" {
			t.Fatalf("mode %d has no name", got)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Fatalf("unknown mode must fail")
	}
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	NewWriterLogger(&buf, ModeProd).Info("scan.done", slog.Int("small", 3))
	if !strings.Contains(buf.String(), `"msg":"scan.done"`) || !strings.Contains(buf.String(), `"small":3`) {
		t.Fatalf("json log: %s", buf.String())
	}

	buf.Reset()
	NewWriterLogger(&buf, ModeProd).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("prod must drop debug: %s", buf.String())
	}

	buf.Reset()
	NewWriterLogger(&buf, ModeDev).Debug("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("text log: %s", buf.String())
	}

	buf.Reset()
	NewWriterLogger(&buf, ModeSilence).Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("silence wrote: %s", buf.String())
	}
}

func TestAsyncHandlerFlushOnClose(t *testing.T) {
	var buf bytes.Buffer
	h := NewAsyncHandler(slog.NewTextHandler(&buf, nil), 64)
	log := slog.New(h).With(slog.String("svc", "colab"))
	for i := 0; i < 10; i++ {
		log.Info("tick", slog.Int("i", i))
	}
	h.Close()
	h.Close()
	if n := strings.Count(buf.String(), "msg=tick"); n != 10 {
		t.Fatalf("flushed %d records", n)
	}
	if !strings.Contains(buf.String(), "svc=colab") {
		t.Fatalf("attrs lost: %s", buf.String())
	}

	log.Info("late")
	if h.Dropped() != 1 {
		t.Fatalf("dropped %d", h.Dropped())
	}
}

func TestAsyncHandlerNotReady(t *testing.T) {
	var h *AsyncHandler
	if h.Ready() || h.Dropped() != 0 {
		t.Fatalf("nil handler must be inert")
	}
	h.Close()
}

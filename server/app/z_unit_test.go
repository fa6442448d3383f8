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

package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeComp struct {
	stop     chan struct{}
	runErr   error
	shutdown atomic.Int32
}

func newFake(runErr error) *fakeComp {
	return &fakeComp{stop: make(chan struct{}), runErr: runErr}
}

func (f *fakeComp) Run() error {
	if f.runErr != nil {
		return f.runErr
	}
	<-f.stop
	return nil
}

func (f *fakeComp) Shutdown(ctx context.Context) error {
	if f.shutdown.Add(1) == 1 {
		close(f.stop)
	}
	return nil
}

func TestRunStopsOnContext(t *testing.T) {
	c := newFake(nil)
	a := NewWith(c)
	hooked := false
	a.OnStop(func(context.Context) error { hooked = true; return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.shutdown.Load() != 1 || !hooked {
		t.Fatalf("shutdown %d hooked %v", c.shutdown.Load(), hooked)
	}
}

func TestRunReturnsComponentError(t *testing.T) {
	boom := errors.New("listen failed")
	ok := newFake(nil)
	a := New(WithGrace(time.Second))
	a.Register(ok)
	a.Register(newFake(boom))
	err := a.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("want component error, got %v", err)
	}
	if ok.shutdown.Load() != 1 {
		t.Fatalf("healthy component not shut down")
	}
}

func TestShutdownErrorsJoined(t *testing.T) {
	a := New()
	hookErr := errors.New("flush failed")
	a.OnStop(func(context.Context) error { return hookErr })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); !errors.Is(err, hookErr) {
		t.Fatalf("want hook error, got %v", err)
	}
}

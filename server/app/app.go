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
	"log/slog"
	"os/signal"
	"syscall"
	"time"
)

const defaultGrace = 5 * time.Second

type App struct {
	comps []Component
	hooks []func(context.Context) error
	log   *slog.Logger
	grace time.Duration
}

type Option func(*App)

func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithGrace 設定優雅關閉的總時限
func WithGrace(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.grace = d
		}
	}
}

func New(opts ...Option) *App {
	a := &App{log: slog.New(slog.DiscardHandler), grace: defaultGrace}
	for _, o := range opts {
		o(a)
	}
	return a
}

func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnStop 註冊在所有元件關閉後執行的收尾動作（例如關閉非同步 logger）
func (a *App) OnStop(fn func(context.Context) error) {
	a.hooks = append(a.hooks, fn)
}

// Run 啟動所有元件，直到 ctx 結束、收到 SIGINT/SIGTERM 或任一元件返回，然後優雅關閉。
//
// 回傳第一個元件錯誤與關閉過程的錯誤（errors.Join）；因訊號或 ctx 結束而停止時不算錯誤。
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("app.stopping", slog.String("reason", context.Cause(ctx).Error()))
	case runErr = <-errCh:
		if runErr != nil {
			a.log.Error("app.component_failed", slog.Any("err", runErr))
		}
	}
	return errors.Join(runErr, a.shutdown())
}

// 反向關閉元件，最後執行 hooks
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()

	var all []error
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil {
			a.log.Warn("app.shutdown", slog.Any("err", err))
			all = append(all, err)
		}
	}
	for _, h := range a.hooks {
		if err := h(ctx); err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}

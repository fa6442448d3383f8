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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/colab/errs"
)

// Body 錯誤回應的 JSON 形狀
type Body struct {
	Error string `json:"error"`
	Extra string `json:"extra,omitempty"`
}

// StatusCode 把錯誤映射成 HTTP 狀態碼：
//   - context 超時 504、取消 408（即使被 wrap 也能命中）
//   - errs.Warn 400，其餘 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	switch errs.Level(err) {
	case errs.Warn:
		return http.StatusBadRequest
	case errs.Log:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Errs 寫回 JSON 錯誤，err 為 nil 時不動作。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	WriteStatus(w, StatusCode(err), err)
}

// WriteStatus 以指定狀態碼寫回 JSON 錯誤。
func WriteStatus(w http.ResponseWriter, status int, err error) {
	b := Body{Error: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		b.Error, b.Extra = message(e), e.Extra
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
}

// Log 只記錄需要關注的錯誤：408/409/429 記 Warn，5xx 記 Error，其餘 4xx 為呼叫端問題不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500 && status < 600:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}

// message 串起 *errs.E 鏈上的主訊息，略過等級前綴
func message(e *errs.E) string {
	msg := e.Message
	for c := e.Cause; c != nil; {
		ce, ok := c.(*errs.E)
		if !ok {
			return msg + ": " + c.Error()
		}
		msg += ": " + ce.Message
		c = ce.Cause
	}
	return msg
}

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

package httperr_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/colab/errs"
	"github.com/zintix-labs/colab/server/httperr"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.NewWarn("bad seed"), http.StatusBadRequest},
		{errs.Wrap(errs.NewWarn("bad seed"), "parse"), http.StatusBadRequest},
		{errs.NewFatal("disk"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{errs.Wrap(context.DeadlineExceeded, "scan"), http.StatusGatewayTimeout},
		{errs.Wrap(context.Canceled, "scan"), http.StatusRequestTimeout},
	}
	for i, c := range cases {
		if got := httperr.StatusCode(c.err); got != c.want {
			t.Fatalf("case %d: got %d want %d", i, got, c.want)
		}
	}
}

func TestErrsBody(t *testing.T) {
	rec := httptest.NewRecorder()
	httperr.Errs(rec, errs.WrapWithExtra(errs.NewWarn("seed must be 8 hex"), "invalid seed", "XYZ"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	var b httperr.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if b.Error != "invalid seed: seed must be 8 hex" || b.Extra != "XYZ" {
		t.Fatalf("body %+v", b)
	}

	rec = httptest.NewRecorder()
	httperr.Errs(rec, nil)
	if rec.Body.Len() != 0 {
		t.Fatalf("nil error must write nothing")
	}
}

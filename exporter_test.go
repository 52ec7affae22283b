package main

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/rtm0/mwr/internal/mwr"
)

type fakeInserter struct {
	batches []int
	fail    map[int]error
}

func (f *fakeInserter) Insert(recs []mwr.Record) error {
	f.batches = append(f.batches, len(recs))
	return f.fail[len(f.batches)-1]
}

func TestInsertBatches(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ins := &fakeInserter{fail: map[int]error{1: errors.New("unexpected status 400")}}

	insertBatches(logger, ins, make([]mwr.Record, 1200), 500)

	if want := []int{500, 500, 200}; !reflect.DeepEqual(ins.batches, want) {
		t.Errorf("batches %v, want %v", ins.batches, want)
	}
	out := buf.String()
	if strings.Count(out, "Batch dropped") != 1 || !strings.Contains(out, `err="unexpected status 400"`) {
		t.Errorf("log output %q lacks the dropped batch error", out)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		inserted, total int
		want            string
	}{
		{0, 0, "100.00%"},
		{0, 200, "0.00%"},
		{50, 200, "25.00%"},
		{200, 200, "100.00%"},
	}
	for _, tc := range tests {
		if got := percent(tc.inserted, tc.total); got != tc.want {
			t.Errorf("percent(%d, %d) = %q, want %q", tc.inserted, tc.total, got, tc.want)
		}
	}
}

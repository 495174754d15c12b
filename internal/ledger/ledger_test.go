package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/ggtest"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndList(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	started := time.UnixMicro(1_700_000_000_000_000)

	passed := ggtest.RunResult{
		Title:    "Counter",
		Events:   3,
		Applied:  3,
		Duration: 1500 * time.Microsecond,
		Captures: []ggtest.CaptureRecord{
			{Index: 1, Kind: ggtest.KindCaptureAndSave, Name: "a.png", Digest: "aa"},
			{Index: 2, Kind: ggtest.KindCaptureAndCheck, Name: "check", Digest: "bb"},
		},
	}
	failed := ggtest.RunResult{
		Title:   "Counter",
		Events:  2,
		Applied: 1,
		Err:     errors.New("boom"),
	}
	if _, err := l.Record(ctx, started, passed); err != nil {
		t.Fatalf("Record: %v", err)
	}
	id, err := l.Record(ctx, started.Add(time.Second), failed)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := l.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != id || runs[0].Passed || runs[0].Error != "boom" || runs[0].Applied != 1 {
		t.Errorf("newest run = %+v", runs[0])
	}
	old := runs[1]
	if !old.Passed || old.Duration != 1500*time.Microsecond || !old.StartedAt.Equal(started) {
		t.Errorf("oldest run = %+v", old)
	}
	if len(old.Captures) != 2 || old.Captures[0].Name != "a.png" || old.Captures[1].Digest != "bb" {
		t.Errorf("captures = %+v", old.Captures)
	}

	limited, err := l.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("List(1) = %d runs, %v", len(limited), err)
	}
}

func TestLastDigest(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	if _, ok, err := l.LastDigest(ctx, "frame"); ok || err != nil {
		t.Fatalf("LastDigest on empty ledger = (%v, %v)", ok, err)
	}
	for _, d := range []string{"one", "two"} {
		r := ggtest.RunResult{Title: "t", Captures: []ggtest.CaptureRecord{{Name: "frame", Digest: d}}}
		if _, err := l.Record(ctx, time.Now(), r); err != nil {
			t.Fatal(err)
		}
	}
	d, ok, err := l.LastDigest(ctx, "frame")
	if err != nil || !ok || d != "two" {
		t.Errorf("LastDigest = (%q, %v, %v), want (two, true, nil)", d, ok, err)
	}
}

func TestReporterRecordsRun(t *testing.T) {
	l, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	var r ggtest.Reporter = l
	r.EventStarted(0, ggtest.KindSendMessage)
	r.EventFinished(0, ggtest.KindSendMessage, nil, time.Millisecond)
	r.RunFinished(ggtest.RunResult{Title: "mem", Events: 1, Applied: 1})
	if err := l.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	runs, err := l.List(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Title != "mem" || !runs[0].Passed {
		t.Errorf("runs = %+v", runs)
	}
}

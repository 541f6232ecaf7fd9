package ctxutil

import (
	"context"
	"testing"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); got != nil {
		t.Fatalf("expected nil fields, got %v", got)
	}

	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	got := LogFields(ctx)
	want := []interface{}{"request_id", "r1", "trace_id", "t1"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}

	onlyReq := WithTraceData(context.Background(), &TraceData{RequestID: "r2"})
	if got := LogFields(onlyReq); len(got) != 2 || got[1] != "r2" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

package optimistic

import (
	"context"
	"errors"
	"testing"
)

func appendItem(s []string) []string {
	out := append([]string(nil), s...)
	return append(out, "new")
}

func TestApplyCommitted(t *testing.T) {
	var written []string
	res, err := Apply(context.Background(), []string{"a"}, appendItem,
		func(_ context.Context, s []string) error { written = s; return nil },
		nil,
	)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Outcome != Committed || len(res.State) != 2 || len(written) != 2 {
		t.Fatalf("unexpected result %+v written=%v", res, written)
	}
}

func TestApplyReconcilesFromRemote(t *testing.T) {
	writeErr := errors.New("network down")
	res, err := Apply(context.Background(), []string{"a"}, appendItem,
		func(context.Context, []string) error { return writeErr },
		func(context.Context) ([]string, error) { return []string{"a", "b"}, nil },
	)
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
	if res.Outcome != Reconciled {
		t.Fatalf("expected reconciled, got %s", res.Outcome)
	}
	if len(res.State) != 2 || res.State[1] != "b" {
		t.Fatalf("expected remote state, got %v", res.State)
	}
}

func TestApplyStaleWhenReloadFails(t *testing.T) {
	writeErr := errors.New("write failed")
	original := []string{"a"}
	res, err := Apply(context.Background(), original, appendItem,
		func(context.Context, []string) error { return writeErr },
		func(context.Context) ([]string, error) { return nil, errors.New("read failed") },
	)
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected joined write error, got %v", err)
	}
	if res.Outcome != Stale || len(res.State) != 1 {
		t.Fatalf("expected pre-change snapshot, got %+v", res)
	}
}

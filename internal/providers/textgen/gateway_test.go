package textgen

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeBackend struct {
	name  string
	out   string
	err   error
	calls int
}

func (f *fakeBackend) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

func (f *fakeBackend) Name() string { return f.name }

func TestGatewayPrimarySuccess(t *testing.T) {
	primary := &fakeBackend{name: "primary", out: "ok"}
	secondary := &fakeBackend{name: "secondary", out: "never"}
	g := NewGateway(nil, 0, primary, secondary)

	out, err := g.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Errorf("out = %q, want ok", out)
	}
	if secondary.calls != 0 {
		t.Error("secondary must not be called when primary succeeds")
	}
}

func TestGatewayFailsOver(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errors.New("quota")}
	secondary := &fakeBackend{name: "secondary", out: "fallback"}
	g := NewGateway(nil, 0, primary, secondary)

	out, err := g.Complete(context.Background(), "sys", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "fallback" {
		t.Errorf("out = %q, want fallback", out)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, want exactly one each", primary.calls, secondary.calls)
	}
}

func TestGatewayAllBackendsFail(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errors.New("quota")}
	secondary := &fakeBackend{name: "secondary", err: errors.New("down")}
	g := NewGateway(nil, 0, primary, secondary)

	_, err := g.Complete(context.Background(), "sys", "prompt")
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("error = %v, want *GatewayError", err)
	}
	if len(ge.Attempted) != 2 || ge.Attempted[0] != "primary" || ge.Attempted[1] != "secondary" {
		t.Errorf("attempted = %v", ge.Attempted)
	}
	// no in-place retries
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, want exactly one each", primary.calls, secondary.calls)
	}
}

func TestGatewayNoBackends(t *testing.T) {
	g := NewGateway(nil, 0)
	if _, err := g.Complete(context.Background(), "sys", "prompt"); err == nil {
		t.Fatal("expected error with no backends")
	}
}

func TestKeyRingRoundRobin(t *testing.T) {
	r := NewKeyRing([]string{"k0", "k1", "k2"})
	got := []string{r.Next(), r.Next(), r.Next(), r.Next()}
	want := []string{"k0", "k1", "k2", "k0"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Next()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if r.Issued() != 4 {
		t.Errorf("issued = %d, want 4", r.Issued())
	}
}

func TestKeyRingEmpty(t *testing.T) {
	r := NewKeyRing(nil)
	if got := r.Next(); got != "" {
		t.Errorf("Next() on empty ring = %q, want empty", got)
	}
}

func TestKeyRingConcurrentRotation(t *testing.T) {
	keys := []string{"a", "b", "c"}
	r := NewKeyRing(keys)

	const workers = 10
	const perWorker = 300 // total divisible by len(keys)

	var mu sync.Mutex
	counts := map[string]int{}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := map[string]int{}
			for j := 0; j < perWorker; j++ {
				local[r.Next()]++
			}
			mu.Lock()
			for k, n := range local {
				counts[k] += n
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	total := workers * perWorker
	if r.Issued() != uint64(total) {
		t.Errorf("issued = %d, want %d", r.Issued(), total)
	}
	for _, k := range keys {
		if counts[k] != total/len(keys) {
			t.Errorf("key %q used %d times, want %d", k, counts[k], total/len(keys))
		}
	}
}

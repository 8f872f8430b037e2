package pluginsuperpoke

import (
	"math/rand/v2"
	"testing"
)

func TestPickEmpty(t *testing.T) {
	p := newPicker(rand.New(rand.NewPCG(1, 2)))
	if _, ok := p.Pick(nil); ok {
		t.Error("Pick(nil) ok = true")
	}
}

func TestPickSingle(t *testing.T) {
	p := newPicker(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 50; i++ {
		e, ok := p.Pick([]CommandEntry{{"ping", 7}})
		if !ok || e.Command != "ping" {
			t.Fatalf("Pick = %+v, %v", e, ok)
		}
	}
}

func TestPickFollowsWeights(t *testing.T) {
	p := newPicker(rand.New(rand.NewPCG(42, 7)))
	entries := []CommandEntry{{"a", 1}, {"b", 3}, {"c", 6}}
	const draws = 20000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		e, _ := p.Pick(entries)
		counts[e.Command]++
	}
	want := map[string]float64{"a": 0.1, "b": 0.3, "c": 0.6}
	for k, share := range want {
		got := float64(counts[k]) / draws
		if got < share-0.02 || got > share+0.02 {
			t.Errorf("%s share = %.3f, want %.2f±0.02", k, got, share)
		}
	}
}

func TestPickSkipsNonPositive(t *testing.T) {
	p := newPicker(rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 100; i++ {
		e, ok := p.Pick([]CommandEntry{{"never", 0}, {"always", 2}})
		if !ok || e.Command != "always" {
			t.Fatalf("Pick = %+v", e)
		}
	}
}

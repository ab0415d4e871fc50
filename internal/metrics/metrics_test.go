package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) != len(labels) {
				continue
			}
			for _, p := range m.GetLabel() {
				if labels[p.GetName()] != p.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LinkRequest(true, "whatsapp")
	m.LinkRequest(true, "whatsapp")
	m.LinkRequest(false, "generic")
	m.CastLookup(ResultHit)
	m.Plan("composite_with_text")
	m.ImageCache(ResultMiss)
	m.Render("post", 10*time.Millisecond, errors.New("boom"))
	m.UpstreamRequest("ok", 20*time.Millisecond)
	m.Degraded("profile")

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"farlinker_link_requests_total", map[string]string{"visitor": "bot", "platform": "whatsapp"}, 2},
		{"farlinker_link_requests_total", map[string]string{"visitor": "human", "platform": "generic"}, 1},
		{"farlinker_cast_lookups_total", map[string]string{"result": "hit"}, 1},
		{"farlinker_preview_plans_total", map[string]string{"image_kind": "composite_with_text"}, 1},
		{"farlinker_image_cache_total", map[string]string{"result": "miss"}, 1},
		{"farlinker_image_render_failures_total", map[string]string{}, 1},
		{"farlinker_degraded_renders_total", map[string]string{"composite": "profile"}, 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, reg, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.LinkRequest(true, "generic")
	m.CastLookup(ResultMiss)
	m.UpstreamRequest("ok", time.Second)
	m.Plan("none")
	m.Render("post", time.Second, nil)
	m.ImageCache(ResultHit)
	m.Degraded("post")
}

package config

import "testing"

func configWith(brave, llm string) *Config {
	cfg := &Config{}
	cfg.Brave.APIKey = brave
	cfg.LLM.APIKey = llm
	return cfg
}

func TestAvailableSources(t *testing.T) {
	tests := []struct {
		brave, llm string
		want       Availability
	}{
		{"bk", "xk", AvailFull},
		{"bk", "", AvailBrave},
		{"", "xk", AvailX},
		{"", "", AvailHN},
	}
	for _, tt := range tests {
		if got := configWith(tt.brave, tt.llm).AvailableSources(); got != tt.want {
			t.Errorf("AvailableSources(brave=%q llm=%q) = %v, want %v", tt.brave, tt.llm, got, tt.want)
		}
	}
}

func TestResolveSourcesAuto(t *testing.T) {
	got, warning := configWith("bk", "xk").ResolveSources("auto")
	if got != "full" || warning != "" {
		t.Errorf("ResolveSources(auto) = %q, %q", got, warning)
	}
}

func TestResolveSourcesDegraded(t *testing.T) {
	// 请求 X 但没有对应密钥时降级到 HN 并给出提示
	got, warning := configWith("bk", "").ResolveSources("x")
	if got != "hn" {
		t.Errorf("ResolveSources(x) = %q, want hn", got)
	}
	if warning == "" {
		t.Error("降级时应返回提示信息")
	}
}

func TestResolveSourcesAllWithoutX(t *testing.T) {
	got, warning := configWith("bk", "").ResolveSources("all")
	if got != "brave" {
		t.Errorf("ResolveSources(all) = %q, want brave", got)
	}
	if warning == "" {
		t.Error("缺少 X 密钥时应提示跳过")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if cfg.Search.MaxDays != 30 {
		t.Errorf("MaxDays 默认值 = %d, want 30", cfg.Search.MaxDays)
	}
	if cfg.Concurrency.Fanout != 6 || cfg.Concurrency.Enrich != 5 {
		t.Errorf("并发默认值 = %+v", cfg.Concurrency)
	}
	if len(cfg.Search.TrustDates) != 1 || cfg.Search.TrustDates[0] != "posts" {
		t.Errorf("TrustDates 默认值 = %v", cfg.Search.TrustDates)
	}
	if cfg.LLM.Model != "grok-4-fast" {
		t.Errorf("默认模型 = %q", cfg.LLM.Model)
	}
}

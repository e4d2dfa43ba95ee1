package core

import (
	"context"
	"errors"
	"testing"

	"github.com/guregu/null/v6"

	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	"github.com/Dreamtreeme/asset-guardian/service/api"
)

func TestNormalizeNameStripsSuffixesAndPunctuation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Corporation", "acme"},
		{"Acme Holdings, Inc.", "acme"},
		{"Samsung Electronics Co., Ltd.", "samsung electronics"},
		{"Procter & Gamble Company", "procter gamble"},
		{"  MICRON TECHNOLOGY, INC. ", "micron technology"},
		{"Company", "company"}, // never strip down to nothing
	}

	for _, c := range cases {
		if got := normalizeName(c.in); got != c.want {
			t.Errorf("normalizeName(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

// TestResolveTickerMatchesAndAttaches resolves a fresh name against a small
// candidate index and checks the ticker lands on the asset and in the log
func TestResolveTickerMatchesAndAttaches(t *testing.T) {
	h := newTestHarness()
	h.search.quotes = []api.Quote{
		{Symbol: "ACMD", LongName: "Acmed Industries PLC", Exchange: "LSE"},
		{Symbol: "ACME", LongName: "Acme Corporation", Exchange: "NYQ"},
	}

	asset, err := h.sc.ResolveTicker(context.Background(), "Acme Corp.")
	if err != nil {
		t.Fatalf("resolution failed: %v", err)
	}
	if !asset.Resolved() || asset.Ticker.String != "ACME" {
		t.Fatalf("expected ticker ACME attached, got %+v", asset.Ticker)
	}

	stored, err := h.assets.GetAssetByTicker(context.Background(), "ACME")
	if err != nil || stored == nil {
		t.Fatalf("ticker not persisted on the asset row: %v", err)
	}

	if len(h.log.attempts) != 1 {
		t.Fatalf("expected 1 logged attempt, got %d", len(h.log.attempts))
	}
	attempt := h.log.attempts[0]
	if attempt.Status != dm.ResolutionMatched {
		t.Errorf("attempt status: expected matched, got %s", attempt.Status)
	}
	if attempt.ResultTicker.String != "ACME" {
		t.Errorf("attempt ticker: expected ACME, got %q", attempt.ResultTicker.String)
	}
	if !attempt.Score.Valid || attempt.Score.Float64 < h.sc.Config.Resolver.Threshold {
		t.Errorf("attempt score %v should be at or above threshold %.2f",
			attempt.Score, h.sc.Config.Resolver.Threshold)
	}
}

func TestResolveTickerIsDeterministic(t *testing.T) {
	h := newTestHarness()
	quotes := []api.Quote{
		{Symbol: "ACMD", LongName: "Acmed Industries PLC", Exchange: "LSE"},
		{Symbol: "ACME", LongName: "Acme Corporation", Exchange: "NYQ"},
		{Symbol: "ACMX", ShortName: "Acme Exploration", Exchange: "NMS"},
	}

	first, firstScore := h.sc.scoreCandidates(normalizeName("Acme Corp."), quotes)
	for i := 0; i < 20; i++ {
		best, score := h.sc.scoreCandidates(normalizeName("Acme Corp."), quotes)
		if best.Symbol != first.Symbol || score != firstScore {
			t.Fatalf("run %d: candidate ranking moved from %s/%.6f to %s/%.6f",
				i, first.Symbol, firstScore, best.Symbol, score)
		}
	}
}

func TestResolveTickerBelowThresholdFailsAndLogs(t *testing.T) {
	h := newTestHarness()
	h.search.quotes = []api.Quote{
		{Symbol: "ZBRA", LongName: "Zebra Technologies Corporation", Exchange: "NMS"},
	}

	_, err := h.sc.ResolveTicker(context.Background(), "Quantum Kelp Farming AG")
	if !errors.Is(err, ErrUnresolvedAsset) {
		t.Fatalf("expected ErrUnresolvedAsset, got %v", err)
	}

	if len(h.log.attempts) != 1 || h.log.attempts[0].Status != dm.ResolutionFailed {
		t.Fatalf("expected a single failed attempt in the log, got %+v", h.log.attempts)
	}

	stored, _ := h.assets.EnsureAsset(context.Background(), "Quantum Kelp Farming AG", "", "")
	if stored.Resolved() {
		t.Error("a failed resolution must not attach a ticker")
	}
}

// TestResolveTickerCooldownSkipsProvider verifies a recent failure
// short-circuits before the search provider is queried again
func TestResolveTickerCooldownSkipsProvider(t *testing.T) {
	h := newTestHarness()
	h.search.quotes = nil // provider finds nothing

	_, err := h.sc.ResolveTicker(context.Background(), "Unknown Widgets Ltd")
	if !errors.Is(err, ErrUnresolvedAsset) {
		t.Fatalf("expected ErrUnresolvedAsset, got %v", err)
	}
	if h.search.callCount() != 1 {
		t.Fatalf("expected 1 provider call, got %d", h.search.callCount())
	}

	_, err = h.sc.ResolveTicker(context.Background(), "Unknown Widgets Ltd")
	if !errors.Is(err, ErrUnresolvedAsset) {
		t.Fatalf("cooldown retry: expected ErrUnresolvedAsset, got %v", err)
	}
	if h.search.callCount() != 1 {
		t.Errorf("cooldown retry hit the provider again, %d calls", h.search.callCount())
	}
	if len(h.log.attempts) != 1 {
		t.Errorf("cooldown retry should not append to the log, got %d attempts", len(h.log.attempts))
	}
}

func TestResolveTickerReusesAttachedTicker(t *testing.T) {
	h := newTestHarness()
	h.seedResolvedAsset("Acme Corporation", "ACME", 0)

	asset, err := h.sc.ResolveTicker(context.Background(), "Acme Corporation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Ticker.String != "ACME" {
		t.Errorf("expected existing ticker ACME, got %q", asset.Ticker.String)
	}
	if h.search.callCount() != 0 {
		t.Errorf("resolved asset must not hit the provider, got %d calls", h.search.callCount())
	}
}

func TestAttachTickerNeverOverwrites(t *testing.T) {
	h := newTestHarness()
	seeded := h.seedResolvedAsset("Acme Corporation", "ACME", 0)

	err := h.assets.AttachTicker(context.Background(), seeded.Id, "WRONG", null.StringFrom("NMS"), null.String{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := h.assets.GetAssetByTicker(context.Background(), "ACME")
	if stored == nil || stored.Ticker.String != "ACME" {
		t.Error("an attached ticker must never be overwritten")
	}
}

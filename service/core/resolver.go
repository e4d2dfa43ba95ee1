package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/guregu/null/v6"

	ex "github.com/Dreamtreeme/asset-guardian/data/extensions"
	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	"github.com/Dreamtreeme/asset-guardian/service/api"
)

// bonus added to candidates listed on a preferred exchange; small enough that
// it breaks ties without lifting a bad name match over the threshold
const exchangeAffinityBonus = 0.05

var corporateSuffixes = []string{
	"incorporated", "corporation", "company", "holdings", "limited",
	"group", "inc", "corp", "ltd", "plc", "co", "sa", "ag", "nv",
}

// ResolveTicker anchors a free-text asset name to a canonical ticker. The
// asset row is created on first mention; if a ticker is already attached it
// is reused without querying the provider. Every attempt, matched or failed,
// lands in the append-only resolution log, and a failure inside the cooldown
// window short-circuits before the provider is hit again.
func (sc *ServiceContext) ResolveTicker(ctx context.Context, name string) (*dm.Asset, error) {
	asset, err := sc.Assets.EnsureAsset(ctx, name, "", "")
	if err != nil {
		return nil, err
	}
	if asset.Resolved() {
		return asset, nil
	}

	since := time.Now().Add(-sc.Config.ResolverCooldown())
	recent, err := sc.Log.GetRecentResolutionFailure(ctx, name, since)
	if err != nil {
		return nil, err
	}
	if recent != nil {
		return nil, fmt.Errorf("%w: %q failed resolution at %s, still cooling down", ErrUnresolvedAsset, name, ex.FmtShort(recent.CreatedAt))
	}

	query := normalizeName(name)
	attempt := &dm.ResolutionAttempt{
		Name:   name,
		Query:  query,
		Status: dm.ResolutionFailed,
	}

	quotes, err := sc.Search.SearchQuotes(ctx, name)
	if err != nil {
		if logErr := sc.Log.AppendResolutionAttempt(ctx, attempt); logErr != nil {
			log.Printf("error logging resolution attempt for %q: %v", name, logErr)
		}
		return nil, fmt.Errorf("%w: provider search for %q failed: %v", ErrUnresolvedAsset, name, err)
	}

	best, bestScore := sc.scoreCandidates(query, quotes)
	if best != nil {
		attempt.ResultTicker = null.StringFrom(best.Symbol)
		attempt.ResultName = null.StringFrom(best.Name())
		attempt.ResultExchange = null.StringFrom(best.Exchange)
		attempt.Score = null.FloatFrom(bestScore)
	}

	if best == nil || bestScore < sc.Config.Resolver.Threshold {
		if logErr := sc.Log.AppendResolutionAttempt(ctx, attempt); logErr != nil {
			log.Printf("error logging resolution attempt for %q: %v", name, logErr)
		}
		return nil, fmt.Errorf("%w: best candidate for %q scored %.2f, below threshold %.2f", ErrUnresolvedAsset, name, bestScore, sc.Config.Resolver.Threshold)
	}

	attempt.Status = dm.ResolutionMatched
	if err := sc.Log.AppendResolutionAttempt(ctx, attempt); err != nil {
		log.Printf("error logging resolution attempt for %q: %v", name, err)
	}

	exchange := null.NewString(best.Exchange, best.Exchange != "")
	if err := sc.Assets.AttachTicker(ctx, asset.Id, best.Symbol, exchange, null.String{}); err != nil {
		return nil, err
	}

	log.Printf("resolved %q to %s (%s, score %.2f)", name, best.Symbol, best.Exchange, bestScore)

	asset.Ticker = null.StringFrom(best.Symbol)
	if !asset.Exchange.Valid {
		asset.Exchange = exchange
	}
	return asset, nil
}

// scoreCandidates ranks provider quotes by Jaro-Winkler similarity between
// the normalized query and the normalized candidate name, with a small bump
// for preferred exchanges. Deterministic for a fixed candidate list.
func (sc *ServiceContext) scoreCandidates(query string, quotes []api.Quote) (*api.Quote, float64) {
	metric := metrics.NewJaroWinkler()

	var best *api.Quote
	bestScore := -1.0

	for i := range quotes {
		q := quotes[i]
		if q.Symbol == "" || q.Name() == "" {
			continue
		}

		score := strutil.Similarity(query, normalizeName(q.Name()), metric)
		if sc.preferredExchange(q.Exchange) {
			score += exchangeAffinityBonus
			if score > 1.0 {
				score = 1.0
			}
		}

		if score > bestScore {
			bestScore = score
			best = &quotes[i]
		}
	}

	return best, bestScore
}

func (sc *ServiceContext) preferredExchange(exchange string) bool {
	for _, p := range sc.Config.Resolver.PreferredExchanges {
		if strings.EqualFold(p, exchange) {
			return true
		}
	}
	return false
}

// normalizeName case-folds, strips punctuation and drops trailing corporate
// suffixes so "Acme Holdings, Inc." and "acme" compare cleanly.
func normalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r == '.' || r == ',' || r == '-' || r == '&':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	for len(words) > 1 {
		last := words[len(words)-1]
		trimmed := false
		for _, suffix := range corporateSuffixes {
			if last == suffix {
				words = words[:len(words)-1]
				trimmed = true
				break
			}
		}
		if !trimmed {
			break
		}
	}

	return strings.Join(words, " ")
}

package matcher

import (
	"context"
	"errors"
	"testing"

	"meal-parser/internal/core/catalog"
	"meal-parser/internal/infrastructure/config"
	"meal-parser/internal/pkg/common"
)

func testConfig() *config.MatcherConfig {
	return &config.MatcherConfig{
		DisambiguationGap:        0.2,
		FuzzyMinSimilarity:       0.5,
		FuzzyMaxResults:          5,
		SuggestionCount:          3,
		SynonymConfidence:        0.8,
		SynonymPartialConfidence: 0.7,
		PartialDefaultConfidence: 0.5,
	}
}

func mention(name string) common.ParsedMention {
	return common.ParsedMention{RawText: name, FoodName: name, Confidence: 0.6}
}

// failingCatalog 指定次數內查詢都失敗的目錄替身
type failingCatalog struct {
	inner    catalog.Service
	failures int
	calls    int
}

func (f *failingCatalog) Search(ctx context.Context, term string) ([]common.CatalogFood, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("catalog unavailable")
	}
	return f.inner.Search(ctx, term)
}

func TestMatchExactWins(t *testing.T) {
	cat := catalog.NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Bread"},
		{ID: "2", Name: "Banana Bread"},
		{ID: "3", Name: "Breadsticks"},
	})
	m := NewMatcher(cat, nil, testConfig())

	result := m.Match(context.Background(), mention("bread"))
	if result.BestMatch == nil {
		t.Fatal("expected a best match")
	}
	if result.BestMatch.Food.Name != "Bread" {
		t.Errorf("best match = %q, want %q", result.BestMatch.Food.Name, "Bread")
	}
	if result.BestMatch.Confidence != 1.0 {
		t.Errorf("confidence = %f, want 1.0", result.BestMatch.Confidence)
	}
	if result.BestMatch.MatchType != common.MatchExact {
		t.Errorf("match type = %q, want exact", result.BestMatch.MatchType)
	}
	if result.Candidates[0].Confidence != 1.0 {
		t.Errorf("candidates[0] confidence = %f, want 1.0", result.Candidates[0].Confidence)
	}
}

func TestMatchPartialContainmentScore(t *testing.T) {
	cat := catalog.NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Chicken Breast"},
	})
	m := NewMatcher(cat, nil, testConfig())

	result := m.Match(context.Background(), mention("chicken"))
	if result.BestMatch == nil {
		t.Fatal("expected a best match")
	}
	if result.BestMatch.MatchType != common.MatchPartial {
		t.Errorf("match type = %q, want partial", result.BestMatch.MatchType)
	}
	// len("chicken")/len("chicken breast") = 7/14
	want := 0.5
	if result.BestMatch.Confidence != want {
		t.Errorf("confidence = %f, want %f", result.BestMatch.Confidence, want)
	}
}

func TestMatchSynonymStage(t *testing.T) {
	// 目錄只有 Bread，"brioche" 必須靠同義詞階段命中，而非落到模糊比對
	cat := catalog.NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Bread"},
	})
	m := NewMatcher(cat, nil, testConfig())

	result := m.Match(context.Background(), mention("brioche"))
	if result.BestMatch == nil {
		t.Fatal("expected a best match")
	}
	if result.BestMatch.MatchType != common.MatchSynonym {
		t.Errorf("match type = %q, want synonym", result.BestMatch.MatchType)
	}
	if result.BestMatch.Confidence != 0.8 {
		t.Errorf("confidence = %f, want 0.8", result.BestMatch.Confidence)
	}
	if result.BestMatch.Food.Name != "Bread" {
		t.Errorf("best match = %q, want %q", result.BestMatch.Food.Name, "Bread")
	}
}

func TestMatchFuzzyStage(t *testing.T) {
	cat := catalog.NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Omelette"},
	})
	m := NewMatcher(cat, nil, testConfig())

	// 拼寫錯誤：只有模糊比對能命中
	result := m.Match(context.Background(), mention("omelete"))
	if result.BestMatch == nil {
		t.Fatal("expected a best match")
	}
	if result.BestMatch.MatchType != common.MatchFuzzy {
		t.Errorf("match type = %q, want fuzzy", result.BestMatch.MatchType)
	}
	if result.BestMatch.Confidence <= 0.5 {
		t.Errorf("confidence = %f, want > 0.5", result.BestMatch.Confidence)
	}
}

func TestMatchFuzzyCapped(t *testing.T) {
	foods := []common.CatalogFood{
		{ID: "1", Name: "Rice"},
		{ID: "2", Name: "Ricea"},
		{ID: "3", Name: "Riceb"},
		{ID: "4", Name: "Ricec"},
		{ID: "5", Name: "Riced"},
		{ID: "6", Name: "Ricee"},
		{ID: "7", Name: "Ricef"},
	}
	cfg := testConfig()
	m := NewMatcher(catalog.NewMemoryCatalog(foods), nil, cfg)

	candidates, err := m.matchFuzzy(context.Background(), "ricx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) > cfg.FuzzyMaxResults {
		t.Errorf("fuzzy candidates = %d, want <= %d", len(candidates), cfg.FuzzyMaxResults)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Confidence > candidates[i-1].Confidence {
			t.Errorf("candidates not sorted descending at %d", i)
		}
	}
}

func TestMatchNeedsDisambiguation(t *testing.T) {
	cat := catalog.NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Chicken Breast"},
		{ID: "2", Name: "Chicken Thigh"},
	})
	m := NewMatcher(cat, nil, testConfig())

	result := m.Match(context.Background(), mention("chicken"))
	if !result.NeedsDisambiguation {
		t.Fatal("expected disambiguation for near-equal candidates")
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(result.Suggestions))
	}
	names := map[string]bool{}
	for _, s := range result.Suggestions {
		names[s] = true
	}
	if !names["Chicken Breast"] || !names["Chicken Thigh"] {
		t.Errorf("suggestions = %v, want both chicken entries", result.Suggestions)
	}
}

func TestMatchNoDisambiguationForClearWinner(t *testing.T) {
	cat := catalog.NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Bread"},
		{ID: "2", Name: "Banana Bread"},
	})
	m := NewMatcher(cat, nil, testConfig())

	// 完全相符只產生一個候選，不需消歧
	result := m.Match(context.Background(), mention("bread"))
	if result.NeedsDisambiguation {
		t.Error("exact single-candidate match should not need disambiguation")
	}
}

func TestMatchCatalogFailureFallsThrough(t *testing.T) {
	inner := catalog.NewMemoryCatalog([]common.CatalogFood{
		{ID: "1", Name: "Bread"},
	})
	// 前兩次查詢（exact、partial 階段）失敗，同義詞階段成功
	cat := &failingCatalog{inner: inner, failures: 2}
	m := NewMatcher(cat, nil, testConfig())

	result := m.Match(context.Background(), mention("bread"))
	if result.BestMatch == nil {
		t.Fatal("expected cascade to continue past failing stages")
	}
	if result.BestMatch.MatchType != common.MatchSynonym {
		t.Errorf("match type = %q, want synonym", result.BestMatch.MatchType)
	}
}

func TestMatchAllStagesEmpty(t *testing.T) {
	cat := catalog.NewMemoryCatalog(nil)
	m := NewMatcher(cat, nil, testConfig())

	result := m.Match(context.Background(), mention("quinoa"))
	if result.BestMatch != nil {
		t.Errorf("expected no best match, got %v", result.BestMatch)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(result.Candidates))
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"bread", "bread", 0},
		{"bread", "break", 1},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if s := similarity("bread", "bread"); s != 1.0 {
		t.Errorf("similarity of equal strings = %f, want 1.0", s)
	}
	if s := similarity("bread", "xyzzy"); s > 0.2 {
		t.Errorf("similarity of unrelated strings = %f, want <= 0.2", s)
	}
}

func TestSynonymLookup(t *testing.T) {
	table := DefaultSynonymTable()

	terms, exact := table.Lookup("brioche")
	if !exact {
		t.Error("brioche should be an exact synonym hit")
	}
	if len(terms) != 1 || terms[0] != "bread" {
		t.Errorf("terms = %v, want [bread]", terms)
	}

	// 標準詞本身也要能查到
	terms, exact = table.Lookup("chicken")
	if !exact || len(terms) != 1 || terms[0] != "chicken" {
		t.Errorf("Lookup(chicken) = %v exact=%v, want [chicken] true", terms, exact)
	}

	// 子字串命中是較弱的訊號
	terms, exact = table.Lookup("brio")
	if exact {
		t.Error("brio should not be an exact hit")
	}
	if len(terms) != 1 || terms[0] != "bread" {
		t.Errorf("Lookup(brio) = %v, want [bread]", terms)
	}
}

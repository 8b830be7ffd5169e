package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ai-blog-writer/internal/models"
)

func TestParseSubKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"numbered", "1. 원두\n2) 분쇄도\n(3) 물 온도", []string{"원두", "분쇄도", "물 온도"}},
		{"bullets and quotes", "- `드립`\n* \"라떼\"\n• 'Espresso'", []string{"드립", "라떼", "Espresso"}},
		{"dedupe ignoring case", "Latte\nlatte\nLATTE\nMocha", []string{"Latte", "Mocha"}},
		{"single comma line", "원두, 분쇄도 , ,물 온도", []string{"원두", "분쇄도", "물 온도"}},
		{"intro line skipped", "추천 키워드:\n\n- 원두\r\n- 로스팅", []string{"원두", "로스팅"}},
		{"empty", "  \n\n", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSubKeywords(tt.text)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("parseSubKeywords() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSubKeywords_Capped(t *testing.T) {
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, fmt.Sprintf("keyword %d", i))
	}
	if got := parseSubKeywords(strings.Join(lines, "\n")); len(got) != maxSubKeywords {
		t.Errorf("Expected %d keywords, got %d", maxSubKeywords, len(got))
	}
}

func TestExtractTitle(t *testing.T) {
	if got := extractTitle("intro\n## 커피 고르는 법\nbody", "fallback"); got != "커피 고르는 법" {
		t.Errorf("extractTitle() = %q", got)
	}
	if got := extractTitle("#\nno heading", "fallback"); got != "fallback" {
		t.Errorf("extractTitle() = %q, want fallback", got)
	}
}

func TestArticlePrompt(t *testing.T) {
	prompt := articlePrompt(&models.ArticleRequest{
		Topic:    " coffee ",
		Audience: "일반인",
		Tone:     "친근한",
		Length:   "long",
		Keywords: []string{"원두", "드립"},
	})

	for _, want := range []string{"주제: coffee\n", "대상 독자: 일반인", "어조: 친근한", "약 3000자", "원두, 드립"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "세부 키워드") {
		t.Error("prompt should omit an empty sub-keyword")
	}
}

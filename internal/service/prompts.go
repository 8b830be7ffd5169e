package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ai-blog-writer/internal/models"
)

const maxSubKeywords = 10

var lengthGuide = map[string]string{
	"short":  "약 800자",
	"medium": "약 1500자",
	"long":   "약 3000자",
}

func subKeywordPrompt(topic string) string {
	return fmt.Sprintf(
		"'%s'을(를) 주제로 블로그 글을 쓰려고 합니다. 검색 수요가 있을 만한 세부 키워드 %d개를 "+
			"한 줄에 하나씩, 설명 없이 키워드만 나열해 주세요.",
		strings.TrimSpace(topic), maxSubKeywords,
	)
}

func articlePrompt(req *models.ArticleRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "주제: %s\n", strings.TrimSpace(req.Topic))
	if req.SubKeyword != "" {
		fmt.Fprintf(&b, "세부 키워드: %s\n", req.SubKeyword)
	}
	if req.Audience != "" {
		fmt.Fprintf(&b, "대상 독자: %s\n", req.Audience)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "어조: %s\n", req.Tone)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, "글 스타일: %s\n", req.Style)
	}
	if guide, ok := lengthGuide[req.Length]; ok {
		fmt.Fprintf(&b, "분량: %s\n", guide)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "포함할 키워드: %s\n", strings.Join(req.Keywords, ", "))
	}
	b.WriteString("\n위 조건에 맞는 블로그 글을 마크다운으로 작성해 주세요. 첫 줄은 '# '로 시작하는 제목이어야 합니다.")
	return b.String()
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•·]+|\d+[.)]|\(\d+\))\s*`)

// parseSubKeywords extracts a clean keyword list from free-form model output.
// Bullets and numbering are stripped, duplicates dropped and the list capped.
func parseSubKeywords(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 1 && strings.Contains(lines[0], ",") {
		lines = strings.Split(lines[0], ",")
	}

	seen := make(map[string]bool)
	out := make([]string, 0, maxSubKeywords)
	for _, line := range lines {
		kw := listMarker.ReplaceAllString(line, "")
		kw = strings.Trim(strings.TrimSpace(kw), `"'*`+"`")
		kw = strings.TrimSpace(kw)
		if kw == "" || strings.HasSuffix(kw, ":") {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
		if len(out) == maxSubKeywords {
			break
		}
	}
	return out
}

// extractTitle returns the first markdown heading, or fallback
func extractTitle(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			if title := strings.TrimSpace(strings.TrimLeft(line, "#")); title != "" {
				return title
			}
		}
	}
	return fallback
}

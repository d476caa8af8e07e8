package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// removeTags are elements stripped entirely, descendants included, before any
// text is extracted.
var removeTags = []string{
	"script", "style", "noscript", "iframe", "svg", "button", "input", "select",
	"textarea", "nav", "footer", "header", "aside", "form", "img", "video", "source",
}

// contentSelectors are tried in order to locate the article root. First match
// wins; no scoring.
var contentSelectors = []string{
	"article",
	`[itemprop="articleBody"]`,
	".article-content",
	".entry-content",
	".post-content",
	".rich_media_content", // WeChat official accounts
	"#content",
	".main-content",
	".content",
}

// blockTags get a newline appended after their text; paragraphs get a blank line.
var blockTags = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "li": true, "br": true, "tr": true,
	"section": true, "article": true,
}

// noisePatterns match boilerplate lines (view counters, bylines, share bars)
// in both Chinese and English.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)查看次数|阅读量|Viewed by|Read count`),
	regexp.MustCompile(`^来源[：:]`),
	regexp.MustCompile(`^作者[：:]`),
	regexp.MustCompile(`^发布时间[：:]`),
	regexp.MustCompile(`(?i)^Posted on`),
	regexp.MustCompile(`(?i)版权所有|All Rights Reserved|Copyright`),
	regexp.MustCompile(`(?i)点击这里|点击阅读|Read more|Read full|全文阅读`),
	regexp.MustCompile(`(?i)关注我们|Subscribe`),
	regexp.MustCompile(`(?i)相关阅读|推荐阅读|Related posts`),
	regexp.MustCompile(`(?i)分享到|Share to`),
}

var (
	urlLineRe = regexp.MustCompile(`(?i)^https?://`)
	cjkRe     = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]`)
	navWordRe = regexp.MustCompile(`(?i)^(Home|Menu|Top|Back|Next|Previous|Log in|Sign up)$`)
)

// Normalize turns raw markup (or plain text) into clean paragraph text with a
// blank line between paragraphs. It never fails: unparseable input yields an
// empty string, plain text passes through the same line filters.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	doc.Find(strings.Join(removeTags, ", ")).Remove()

	root := doc.Find("body").First()
	for _, selector := range contentSelectors {
		if match := doc.Find(selector).First(); match.Length() > 0 {
			root = match
			break
		}
	}
	if root.Length() == 0 {
		return ""
	}

	var text strings.Builder
	for _, node := range root.Nodes {
		extractText(node, &text)
	}

	return cleanLines(text.String())
}

// extractText walks the tree concatenating text nodes, appending a newline
// after each block-level element and a blank line after paragraphs.
func extractText(node *html.Node, out *strings.Builder) {
	if node.Type == html.TextNode {
		out.WriteString(node.Data)
		return
	}
	if node.Type != html.ElementNode && node.Type != html.DocumentNode {
		return
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		extractText(child, out)
	}

	if node.Type == html.ElementNode && blockTags[node.Data] {
		out.WriteString("\n")
		if node.Data == "p" {
			out.WriteString("\n")
		}
	}
}

// cleanLines applies the line-level filters and rejoins survivors with a blank
// line between each.
func cleanLines(text string) string {
	var clean []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isBareURL(line) {
			continue
		}
		if isNoise(line) {
			continue
		}
		if isNavWord(line) {
			continue
		}
		clean = append(clean, line)
	}

	return strings.Join(clean, "\n\n")
}

// isBareURL reports whether the line is a raw link with no accompanying
// natural-language text. Lines mixing a URL with CJK prose are kept.
func isBareURL(line string) bool {
	if !urlLineRe.MatchString(line) {
		return false
	}
	if cjkRe.MatchString(line) {
		return false
	}
	return len(line) > 15 || !strings.Contains(line, " ")
}

func isNoise(line string) bool {
	for _, pattern := range noisePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// isNavWord drops very short non-CJK lines that are exact matches of common
// navigation labels left over from menus.
func isNavWord(line string) bool {
	if cjkRe.MatchString(line) {
		return false
	}
	if len(strings.Fields(line)) >= 3 || len(line) >= 20 {
		return false
	}
	return navWordRe.MatchString(line)
}

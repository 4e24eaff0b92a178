package probe

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const snippetLimit = 256

// ExpectStatus fails unless the response carries the wanted status code.
func ExpectStatus(resp *Response, want int) error {
	if got := resp.StatusCode(); got != want {
		return newError(KindAssertion, resp.URL(), fmt.Sprintf("expected status %d, got %d", want, got), nil)
	}
	return nil
}

// ExpectContains fails unless body contains fragment verbatim.
func ExpectContains(url, body, fragment string) error {
	if strings.Contains(body, fragment) {
		return nil
	}
	return newError(KindAssertion, url, fmt.Sprintf("expected body to contain %q, got %q", fragment, snippet(body)), nil)
}

// ExpectSelector fails unless the HTML body has an element matching selector.
func ExpectSelector(url, body, selector string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return newError(KindAssertion, url, "parse html", err)
	}
	if doc.Find(selector).Length() == 0 {
		return newError(KindAssertion, url, fmt.Sprintf("expected an element matching %q", selector), nil)
	}
	return nil
}

func snippet(body string) string {
	if len(body) <= snippetLimit {
		return body
	}
	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}

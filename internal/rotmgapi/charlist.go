package rotmgapi

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
)

// SummarizeCharList reads the account name and characters out of a raw
// /char/list body for display. The HTML parser lowercases element and
// attribute names, so selectors are lowercase.
func SummarizeCharList(body string) (*CharListSummary, error) {
	if msg := ServerError(body); msg != "" {
		return nil, errors.Errorf("char list rejected: %s", msg)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse char list")
	}

	chars := doc.Find("chars").First()
	if chars.Length() == 0 {
		return nil, errors.New("char list has no <Chars> element")
	}

	summary := &CharListSummary{
		AccountName: text(chars.Find("account name").First()),
		NextCharID:  chars.AttrOr("nextcharid", ""),
		MaxChars:    chars.AttrOr("maxnumchars", ""),
	}

	// Self-closing XML elements are opened but never closed by the HTML
	// parser, so lookups go by descendant rather than direct child.
	chars.Find("char[id]").Each(func(_ int, s *goquery.Selection) {
		summary.Characters = append(summary.Characters, Character{
			ID:         s.AttrOr("id", ""),
			ObjectType: text(s.Find("objecttype")),
			Level:      text(s.Find("level")),
			Fame:       text(s.Find("currentfame")),
		})
	})

	return summary, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}

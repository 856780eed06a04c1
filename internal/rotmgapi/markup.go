package rotmgapi

import (
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/go-faster/errors"
)

// Markup reads named fields out of the semi-structured body returned by the
// account service. A field is the text between the first <Name> and the
// nearest following </Name> on the same line.
type Markup struct {
	body string
}

func NewMarkup(body string) Markup {
	return Markup{body: body}
}

var fieldPatterns sync.Map // map[string]*regexp.Regexp

func fieldPattern(name string) *regexp.Regexp {
	if re, ok := fieldPatterns.Load(name); ok {
		return re.(*regexp.Regexp)
	}

	quoted := regexp.QuoteMeta(name)
	re := regexp.MustCompile(fmt.Sprintf(`<%s>(?P<value>.*?)</%s>`, quoted, quoted))
	actual, _ := fieldPatterns.LoadOrStore(name, re)

	return actual.(*regexp.Regexp)
}

// Field returns the text enclosed by the name markers, byte for byte. An
// adjacent marker pair yields an empty string, not an error.
func (m Markup) Field(name string) (string, error) {
	re := fieldPattern(name)

	match := re.FindStringSubmatchIndex(m.body)
	if match == nil {
		return "", errors.Wrapf(ErrFieldMissing, "<%s>", name)
	}

	idx := re.SubexpIndex("value")
	start, end := match[2*idx], match[2*idx+1]
	if start < 0 {
		return "", errors.Wrapf(ErrFieldMalformed, "<%s>", name)
	}

	value := m.body[start:end]
	if !utf8.ValidString(value) {
		return "", errors.Wrapf(ErrFieldMalformed, "<%s>", name)
	}

	return value, nil
}

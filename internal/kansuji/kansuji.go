// Package kansuji converts between kanji numerals as written in statutory
// text and integers. It handles the digit-group notation used in article
// numbers (九十, 百五, 千二百, 一万), plain and full-width Arabic digits, and
// the branch notation 二の三 used for inserted articles (第二条の三).
package kansuji

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedNumeral is returned when a token cannot be parsed as a numeral.
// Callers recover locally by discarding the candidate, never the document.
var ErrMalformedNumeral = errors.New("kansuji: malformed numeral")

var digits = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
}

var magnitudes = map[rune]int{
	'十': 10, '百': 100, '千': 1000,
}

// ToInteger parses a kanji or Arabic numeral token into an integer.
//
// A magnitude token with no preceding digit contributes its face value once,
// so 百五 is 105 (not 1005) and a bare 十 is 10. Supports values through the
// 万 group (10,000s). Full-width digits are accepted and treated as Arabic.
func ToInteger(text string) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("%w: empty token", ErrMalformedNumeral)
	}
	if n, ok := parseArabic(text); ok {
		return n, nil
	}

	total := 0   // completed 万 groups
	section := 0 // current group below 万
	digit := 0   // pending digit awaiting a magnitude

	for _, r := range text {
		switch {
		case digits[r] != 0:
			if digit != 0 {
				// Two digits in a row (e.g. 二三) is not a statutory numeral.
				return 0, fmt.Errorf("%w: %q", ErrMalformedNumeral, text)
			}
			digit = digits[r]
		case magnitudes[r] != 0:
			if digit == 0 {
				digit = 1
			}
			section += digit * magnitudes[r]
			digit = 0
		case r == '万':
			section += digit
			if section == 0 {
				section = 1
			}
			total += section * 10000
			section, digit = 0, 0
		default:
			return 0, fmt.Errorf("%w: %q", ErrMalformedNumeral, text)
		}
	}
	n := total + section + digit
	if n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumeral, text)
	}
	return n, nil
}

// ToNumeralText renders an integer back into kanji numeral text. It is the
// inverse of ToInteger over the supported range and exists mainly so
// diagnostics can echo numerals the way the corpus writes them.
func ToNumeralText(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	if n >= 10000 {
		b.WriteString(ToNumeralText(n / 10000))
		b.WriteRune('万')
		n %= 10000
	}
	writeGroup(&b, n)
	return b.String()
}

// ParseBranch parses a numeral that may carry a branch suffix, e.g. 二の三
// (article 2-3). Returns (base, branch); branch is 0 when absent. A branch
// pair is returned rather than a float so 二の三 and 二の三十 stay distinct.
func ParseBranch(text string) (base, branch int, err error) {
	head, tail, found := strings.Cut(text, "の")
	base, err = ToInteger(head)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return base, 0, nil
	}
	branch, err = ToInteger(tail)
	if err != nil {
		return 0, 0, err
	}
	return base, branch, nil
}

func writeGroup(b *strings.Builder, n int) {
	units := []struct {
		value int
		r     rune
	}{{1000, '千'}, {100, '百'}, {10, '十'}}

	for _, u := range units {
		d := n / u.value
		if d == 0 {
			continue
		}
		if d > 1 {
			b.WriteRune(digitRune(d))
		}
		b.WriteRune(u.r)
		n %= u.value
	}
	if n > 0 {
		b.WriteRune(digitRune(n))
	}
}

var digitRunes = []rune("零一二三四五六七八九")

func digitRune(d int) rune {
	return digitRunes[d]
}

// parseArabic handles pass-through of tokens already written with Arabic
// digits, including the full-width forms that appear in some corpus files.
func parseArabic(text string) (int, bool) {
	n := 0
	seen := false
	for _, r := range text {
		var d int
		switch {
		case r >= '0' && r <= '9':
			d = int(r - '0')
		case r >= '０' && r <= '９':
			d = int(r - '０')
		default:
			return 0, false
		}
		n = n*10 + d
		seen = true
	}
	return n, seen
}

package dawg

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Метки автомата - байты кодовой страницы Windows-1251.
var codePage = charmap.Windows1251

// EncodeRune переводит символ в байт кодовой страницы.
func EncodeRune(r rune) (byte, bool) {
	if r >= 0 && r < utf8.RuneSelf {
		return byte(r), true
	}
	return codePage.EncodeRune(r)
}

// DecodeByte восстанавливает символ по метке перехода. Служебные байты 0 и 1
// (терминатор и разделитель) символами не считаются.
func DecodeByte(c byte) (rune, bool) {
	if c <= Separator {
		return 0, false
	}
	r := codePage.DecodeByte(c)
	if r == utf8.RuneError {
		return 0, false
	}
	return r, true
}

// Encode переводит строку в байты кодовой страницы.
func Encode(s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := EncodeRune(r)
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

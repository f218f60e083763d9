package analyzer

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Kind - вид разбора.
type Kind uint8

const (
	// KindPlain - разбор без парадигмы (числа, аббревиатуры, знаки препинания).
	KindPlain Kind = iota
	// KindDictionary - форма словарной лексемы.
	KindDictionary
	// KindCombined - составное слово через дефис.
	KindCombined
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindDictionary:
		return "dictionary"
	case KindCombined:
		return "combined"
	}
	return "unknown"
}

// Коэффициенты оценки разбора.
const (
	typoPenalty     = 0.3
	stutterPenalty  = 0.6
	combinedPenalty = 0.8
)

// agreementCategories - категории, по которым согласуются части составного слова.
var agreementCategories = []Grammeme{PartOfSpeech, Number, Case, Person, Tense}

// DictionaryScore - оценка словарного разбора с учетом исправлений: каждая опечатка
// умножает оценку на 0.3, любое число заиканий - на 0.6.
func DictionaryScore(stutter, typos int) float64 {
	return math.Pow(typoPenalty, float64(typos)) * math.Pow(stutterPenalty, float64(min(stutter, 1)))
}

// Parse - один вариант разбора слова.
//
// Словарный разбор (KindDictionary) знает свою парадигму и умеет строить
// любые формы лексемы. Составной разбор (KindCombined) состоит из двух частей;
// его тег, оценка и счетчики исправлений вычисляются из частей.
// Разбор, возвращенный анализатором, больше не изменяется.
type Parse struct {
	kind    Kind
	word    string
	tag     *Tag
	score   float64
	stutter int
	typos   int
	parser  string

	// Словарный разбор.
	dict        *Dictionary
	paradigmIdx int
	formIdx     int
	stem        string
	prefix      string // Приставка, добавленная к слову (по-, экс-, ...).
	suffix      string // Частица после слова (-то, -ка, ...).

	// Составной разбор.
	left, right *Parse
}

// NewParse создает простой разбор без парадигмы.
func NewParse(word string, tag *Tag, score float64) *Parse {
	return &Parse{kind: KindPlain, word: word, tag: tag, score: score}
}

// Combine создает составной разбор из двух частей слова через дефис.
// Правая часть определяет тег всего слова.
func Combine(left, right *Parse) *Parse {
	return &Parse{
		kind:    KindCombined,
		word:    left.word + "-" + right.word,
		tag:     right.tag,
		score:   left.score * right.score * combinedPenalty,
		stutter: left.stutter + right.stutter,
		typos:   left.typos + right.typos,
		left:    left,
		right:   right,
	}
}

// Kind возвращает вид разбора.
func (p *Parse) Kind() Kind { return p.kind }

// Word возвращает слово в текущей форме (с исправленными ошибками).
func (p *Parse) Word() string { return p.word }

// Tag возвращает тег текущей формы.
func (p *Parse) Tag() *Tag { return p.tag }

// Score возвращает уверенность в разборе, от 0 до 1.
func (p *Parse) Score() float64 { return p.score }

// StutterCnt возвращает число исправленных заиканий.
func (p *Parse) StutterCnt() int { return p.stutter }

// TyposCnt возвращает число исправленных опечаток.
func (p *Parse) TyposCnt() int { return p.typos }

// Parser возвращает имя парсера, создавшего разбор.
func (p *Parse) Parser() string { return p.parser }

// Paradigm возвращает номер парадигмы и формы словарного разбора.
func (p *Parse) Paradigm() (paradigmIdx, formIdx int, ok bool) {
	if p.kind != KindDictionary {
		return 0, 0, false
	}
	return p.paradigmIdx, p.formIdx, true
}

// Parts возвращает части составного разбора.
func (p *Parse) Parts() (left, right *Parse, ok bool) {
	if p.kind != KindCombined {
		return nil, nil, false
	}
	return p.left, p.right, true
}

// Stem возвращает основу словарного разбора.
func (p *Parse) Stem() string { return p.stem }

// FormCount возвращает число форм лексемы; для простого разбора - 1.
func (p *Parse) FormCount() int {
	switch p.kind {
	case KindDictionary:
		return p.dict.FormCount(p.paradigmIdx)
	case KindCombined:
		return p.right.FormCount()
	}
	return 1
}

func (p *Parse) clone() *Parse {
	c := *p
	return &c
}

// derived возвращает копию словарного разбора с приставкой и частицей,
// которые не входят в парадигму, и оценкой, умноженной на factor.
func (p *Parse) derived(prefix, suffix string, factor float64) *Parse {
	c := p.clone()
	c.prefix, c.suffix = prefix, suffix
	c.score *= factor
	return c
}

// Inflect ставит слово в форму, заданную целью:
//   - FormIndex - номер формы в парадигме;
//   - Grammemes, Constraints, *Tag, *Parse - первая по порядку форма,
//     тег которой соответствует цели (см. Tag.Matches).
//
// Новая форма не считается исправлением, поэтому ее счетчики равны нулю.
// Простой разбор возвращает сам себя. Если подходящей формы нет, ok == false.
func (p *Parse) Inflect(target Target, categories ...Grammeme) (*Parse, bool) {
	switch p.kind {
	case KindDictionary:
		return p.inflectDictionary(target, categories)
	case KindCombined:
		return p.inflectCombined(target, categories)
	}
	return p, true
}

func (p *Parse) inflectDictionary(target Target, categories []Grammeme) (*Parse, bool) {
	paradigm := p.dict.paradigms[p.paradigmIdx]
	n := len(paradigm) / 3

	if idx, ok := target.(FormIndex); ok {
		if idx < 0 || int(idx) >= n {
			return nil, false
		}
		return p.form(paradigm, int(idx)), true
	}

	for formIdx := 0; formIdx < n; formIdx++ {
		if p.dict.formTag(paradigm, formIdx).Matches(target, categories...) {
			return p.form(paradigm, formIdx), true
		}
	}
	return nil, false
}

// form восстанавливает форму formIdx: префикс формы + основа + суффикс формы.
func (p *Parse) form(paradigm []uint16, formIdx int) *Parse {
	d := p.dict
	return &Parse{
		kind:        KindDictionary,
		word:        d.formPrefix(paradigm, formIdx) + p.stem + d.formSuffix(paradigm, formIdx),
		tag:         d.formTag(paradigm, formIdx),
		score:       DictionaryScore(0, 0),
		parser:      p.parser,
		dict:        d,
		paradigmIdx: p.paradigmIdx,
		formIdx:     formIdx,
		stem:        p.stem,
		prefix:      p.prefix,
		suffix:      p.suffix,
	}
}

func (p *Parse) inflectCombined(target Target, categories []Grammeme) (*Parse, bool) {
	right, ok := p.right.Inflect(target, categories...)
	if !ok {
		return nil, false
	}

	var left *Parse
	if _, isIndex := target.(FormIndex); isIndex && len(categories) == 0 {
		left, ok = p.left.Inflect(right.tag, agreementCategories...)
	} else {
		left, ok = p.left.Inflect(target, categories...)
	}
	if !ok {
		return nil, false
	}

	c := Combine(left, right)
	c.parser = p.parser
	return c, true
}

// Normalize возвращает начальную форму. С keepPOS ищется первая форма с той же
// частью речи (для причастия - причастие, а не инфинитив).
func (p *Parse) Normalize(keepPOS bool) (*Parse, bool) {
	if keepPOS {
		return p.Inflect(Constraints{PartOfSpeech: {p.tag.POS()}})
	}
	return p.Inflect(FormIndex(0))
}

// Matches проверяет, согласуется ли разбор с целью (см. Tag.Matches).
func (p *Parse) Matches(target Target, categories ...Grammeme) bool {
	return p.tag.Matches(target, categories...)
}

// Forms возвращает все формы лексемы по порядку парадигмы.
func (p *Parse) Forms() []*Parse {
	n := p.FormCount()
	if p.kind == KindPlain {
		return []*Parse{p}
	}
	forms := make([]*Parse, 0, n)
	for i := 0; i < n; i++ {
		if f, ok := p.Inflect(FormIndex(i)); ok {
			forms = append(forms, f)
		}
	}
	return forms
}

// PluralCategory - категория множественного числа для славянских языков.
type PluralCategory uint8

const (
	PluralOne PluralCategory = iota
	PluralFew
	PluralMany
)

func (c PluralCategory) String() string {
	switch c {
	case PluralOne:
		return "one"
	case PluralFew:
		return "few"
	}
	return "many"
}

// PluralCategoryOf возвращает категорию числа n: 1, 21, 101 - one;
// 2-4, 22-24 - few; остальные - many.
func PluralCategoryOf(n int) PluralCategory {
	if n < 0 {
		n = -n
	}
	n %= 100
	switch {
	case n%10 == 1 && n != 11:
		return PluralOne
	case n%10 >= 2 && n%10 <= 4 && (n < 10 || n >= 20):
		return PluralFew
	}
	return PluralMany
}

// Pluralize согласует слово с числом n ("1 кошка", "2 кошки", "5 кошек").
func (p *Parse) Pluralize(n int) (*Parse, bool) {
	return p.PluralizeCategory(PluralCategoryOf(n))
}

// PluralizeCategory согласует слово с категорией числа. Изменяются только
// существительные, полные прилагательные и причастия.
func (p *Parse) PluralizeCategory(c PluralCategory) (*Parse, bool) {
	t := p.tag
	if !t.Has(NOUN) && !t.Has(ADJF) && !t.Has(PRTF) {
		return p, true
	}

	number := Plur
	if c == PluralOne {
		number = Sing
	}

	switch {
	case t.Has(NOUN) && !t.Has(Nomn) && !t.Has(Accs):
		// Косвенные падежи: падеж управляется предлогом или глаголом.
		return p.Inflect(Grammemes{number, t.Value(Case)})
	case c == PluralOne:
		if t.Has(Nomn) {
			return p.Inflect(Grammemes{Sing, Nomn})
		}
		return p.Inflect(Grammemes{Sing, Accs})
	case c == PluralFew && t.Has(NOUN):
		return p.Inflect(Grammemes{Sing, Gent})
	case c == PluralFew && (t.Has(ADJF) || t.Has(PRTF)) && t.Has(Femn):
		return p.Inflect(Grammemes{Plur, Nomn})
	}
	return p.Inflect(Grammemes{Plur, Gent})
}

// String возвращает слово вместе с приставкой и частицей.
func (p *Parse) String() string {
	switch p.kind {
	case KindCombined:
		return p.left.String() + "-" + p.right.String()
	case KindDictionary:
		if p.prefix != "" {
			formPrefix := p.dict.formPrefix(p.dict.paradigms[p.paradigmIdx], p.formIdx)
			return formPrefix + p.prefix + strings.TrimPrefix(p.word, formPrefix) + p.suffix
		}
		return p.word + p.suffix
	}
	return p.word
}

// runeLen - длина строки в символах.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

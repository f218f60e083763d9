// tagset.go определяет грамматический тег: разбор строки тега, замыкание
// граммем по таблице родителей и сопоставление тегов между собой.
package analyzer

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// grammemeSet - битовая маска граммем.
type grammemeSet [(numGrammemes + 63) / 64]uint64

func (s *grammemeSet) add(g Grammeme) {
	s[g>>6] |= 1 << (g & 63)
}

func (s *grammemeSet) has(g Grammeme) bool {
	return int(g) < numGrammemes && s[g>>6]&(1<<(g&63)) != 0
}

// Tag - неизменяемый грамматический тег вида "NOUN,inan,femn sing,nomn":
// до пробела - постоянные граммемы лексемы (stat), после - граммемы формы (flex).
type Tag struct {
	stat []string
	flex []string
	set  grammemeSet
	// values[g] - последняя указанная в теге граммема из g и ее потомков
	// (для voct: values[Nomn] == values[Case] == Voct).
	values [numGrammemes]Grammeme
	// Граммемы, которых нет в таблице.
	other mapset.Set[string]
	ext   *Tag
}

// NewTag разбирает строку тега. Граммемы можно записывать как внутренними
// именами (NOUN, nomn), так и короткими русскими обозначениями (СУЩ, им).
func NewTag(s string) *Tag {
	statStr, flexStr, _ := strings.Cut(strings.TrimSpace(s), " ")
	t := &Tag{
		stat:  splitGrammemes(statStr),
		flex:  splitGrammemes(flexStr),
		other: mapset.NewThreadUnsafeSet[string](),
	}
	for _, codes := range [][]string{t.stat, t.flex} {
		for _, code := range codes {
			t.assert(code)
		}
	}
	return t
}

// MakeTag создает тег с парным тегом во внешней (русской) нотации.
func MakeTag(internal, external string) *Tag {
	t := NewTag(internal)
	t.ext = NewTag(external)
	return t
}

func splitGrammemes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (t *Tag) assert(code string) {
	g, ok := ParseGrammeme(code)
	if !ok {
		t.other.Add(code)
		return
	}
	t.set.add(g)
	t.values[g] = g
	// Категория получает значение граммемы, указанной последней.
	for _, a := range ancestors[g] {
		t.set.add(a)
		t.values[a] = g
	}
}

// Has сообщает, указана ли граммема или категория (с учетом предков).
func (t *Tag) Has(g Grammeme) bool {
	return t.set.has(g)
}

// HasName - то же, что Has, но по имени; находит и граммемы вне таблицы.
func (t *Tag) HasName(name string) bool {
	if g, ok := ParseGrammeme(name); ok {
		return t.Has(g)
	}
	return t.other.Contains(name)
}

// Value возвращает граммему, которой в теге выражена категория g. Если
// указано несколько граммем одной категории, берется последняя.
func (t *Tag) Value(g Grammeme) Grammeme {
	if int(g) >= numGrammemes {
		return NoGrammeme
	}
	return t.values[g]
}

// POS возвращает часть речи.
func (t *Tag) POS() Grammeme {
	return t.values[PartOfSpeech]
}

// Ext возвращает тег во внешней нотации, если он был задан.
func (t *Tag) Ext() *Tag {
	return t.ext
}

// Target - с чем сравнивается тег: номер формы, список граммем,
// ограничения по категориям, другой тег или разбор.
type Target interface {
	isTarget()
}

// FormIndex - номер формы в парадигме.
type FormIndex int

// Grammemes - граммемы, которые все должны быть указаны в теге.
type Grammemes []Grammeme

// Constraints - допустимые значения категорий: значение категории тега
// должно входить в список.
type Constraints map[Grammeme][]Grammeme

func (FormIndex) isTarget()   {}
func (Grammemes) isTarget()   {}
func (Constraints) isTarget() {}
func (*Tag) isTarget()        {}
func (*Parse) isTarget()      {}

// Matches проверяет тег на соответствие цели.
//
// Без categories: для Grammemes все граммемы должны быть в теге, для Constraints
// каждая категория должна принимать одно из разрешенных значений, тег или разбор
// должны совпадать полностью. С categories тег сравнивается с тегом цели
// только по перечисленным категориям.
func (t *Tag) Matches(target Target, categories ...Grammeme) bool {
	if len(categories) > 0 {
		other := tagOf(target)
		if other == nil {
			return false
		}
		for _, c := range categories {
			if t.Value(c) != other.Value(c) {
				return false
			}
		}
		return true
	}

	switch v := target.(type) {
	case Grammemes:
		for _, g := range v {
			if !t.Has(g) {
				return false
			}
		}
		return true
	case Constraints:
		for category, allowed := range v {
			if !slices.Contains(allowed, t.Value(category)) {
				return false
			}
		}
		return true
	}
	if other := tagOf(target); other != nil {
		return t.Equal(other)
	}
	return false
}

func tagOf(target Target) *Tag {
	switch v := target.(type) {
	case *Tag:
		return v
	case *Parse:
		if v != nil {
			return v.tag
		}
	}
	return nil
}

// Equal сообщает, выражают ли два тега одни и те же граммемы.
func (t *Tag) Equal(o *Tag) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.values == o.values && t.other.Equal(o.other)
}

// IsProductive - false для служебных и закрытых классов слов; по ним
// нельзя строить догадки приставками и суффиксами.
func (t *Tag) IsProductive() bool {
	for _, g := range [...]Grammeme{NUMR, NPRO, PRED, PREP, CONJ, PRCL, INTJ, Apro, NUMB, ROMN, LATN, PNCT, UNKN} {
		if t.Has(g) {
			return false
		}
	}
	return true
}

// IsCapitalized - true для имен собственных, которые пишутся с заглавной буквы.
func (t *Tag) IsCapitalized() bool {
	return t.Has(Name) || t.Has(Surn) || t.Has(Patr) || t.Has(Geox) || t.Has(Init)
}

func (t *Tag) String() string {
	if t == nil {
		return ""
	}
	s := strings.Join(t.stat, ",")
	if len(t.flex) > 0 {
		s += " " + strings.Join(t.flex, ",")
	}
	return s
}

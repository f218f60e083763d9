package analyzer

import (
	"encoding/json"
	"sort"
)

// View - плоское представление разбора для JSON: значения основных категорий
// отдельными полями, остальные граммемы - списком.
type View struct {
	Word         string   `json:"word"`           // Слово с приставкой и частицей
	Normal       string   `json:"normal"`         // Нормальная форма (лемма)
	Tags         string   `json:"tags"`           // Полная строка тегов для отладки
	ExtTags      string   `json:"ext_tags"`       // Теги в русской нотации
	Score        float64  `json:"score"`          // Уверенность в разборе
	Parser       string   `json:"parser"`         // Парсер, создавший разбор
	Stutter      int      `json:"stutter"`        // Исправленные заикания
	Typos        int      `json:"typos"`          // Исправленные опечатки
	PartOfSpeech string   `json:"part_of_speech"` // Часть речи
	Animacy      string   `json:"animacy"`        // Одушевленность
	Aspect       string   `json:"aspect"`         // Вид
	Case         string   `json:"case"`           // Падеж
	Gender       string   `json:"gender"`         // Род
	Mood         string   `json:"mood"`           // Наклонение
	Number       string   `json:"number"`         // Число
	Person       string   `json:"person"`         // Лицо
	Tense        string   `json:"tense"`          // Время
	Transitivity string   `json:"transitivity"`   // Переходность
	Voice        string   `json:"voice"`          // Залог
	Involvement  string   `json:"involvement"`    // Совместность
	OtherTags    []string `json:"other_tags"`     // Остальные теги, не вошедшие в основные категории
}

// View строит представление разбора.
func (p *Parse) View() View {
	t := p.tag
	v := View{
		Word:         p.String(),
		Tags:         t.String(),
		Score:        p.score,
		Parser:       p.parser,
		Stutter:      p.stutter,
		Typos:        p.typos,
		PartOfSpeech: t.Value(PartOfSpeech).String(),
		Animacy:      t.Value(Animacy).String(),
		Aspect:       t.Value(Aspect).String(),
		Case:         t.Value(Case).String(),
		Gender:       t.Value(Gender).String(),
		Mood:         t.Value(Mood).String(),
		Number:       t.Value(Number).String(),
		Person:       t.Value(Person).String(),
		Tense:        t.Value(Tense).String(),
		Transitivity: t.Value(Transitivity).String(),
		Voice:        t.Value(Voice).String(),
		Involvement:  t.Value(Involvement).String(),
		OtherTags:    t.otherGrammemes(),
	}
	if ext := t.Ext(); ext != nil {
		v.ExtTags = ext.String()
	}
	if normal, ok := p.Normalize(false); ok {
		v.Normal = normal.String()
	}
	return v
}

// otherGrammemes возвращает граммемы тега, не принадлежащие ни одной категории.
func (t *Tag) otherGrammemes() []string {
	var out []string
	for _, codes := range [][]string{t.stat, t.flex} {
		for _, code := range codes {
			g, ok := ParseGrammeme(code)
			if !ok || len(g.Ancestors()) == 0 {
				out = append(out, code)
			}
		}
	}
	sort.Strings(out)
	return out
}

// MarshalJSON сериализует разбор в виде View.
func (p *Parse) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.View())
}

package dawg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(keys ...string) map[string][]Payload {
	m := make(map[string][]Payload, len(keys))
	for i, k := range keys {
		m[k] = []Payload{{i, 0}}
	}
	return m
}

func wordsOf(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Word)
	}
	return out
}

func TestSearch_ExtraLetter(t *testing.T) {
	d := buildInt(t, map[string]uint32{"cat": 5})

	got := d.Search("caat", nil, 0, 1)
	require.Len(t, got, 1)
	assert.Equal(t, Match{Word: "cat", Payloads: []Payload{{5}}, Typos: 1}, got[0])

	assert.Empty(t, d.Search("caat", nil, 0, 0))
}

func TestSearch_StutterWithReplacement(t *testing.T) {
	d := buildWords(t, FormatWords, map[string][]Payload{"нё": {{3, 1}}})

	got := d.Search("нне", map[rune]rune{'е': 'ё'}, 1, 0)
	require.Len(t, got, 1)
	assert.Equal(t, Match{Word: "нё", Payloads: []Payload{{3, 1}}, Stutter: 1}, got[0])

	assert.Empty(t, d.Search("нне", map[rune]rune{'е': 'ё'}, 0, 0))
}

func TestSearch_Corrections(t *testing.T) {
	d := buildWords(t, FormatWords, words("слово", "да", "ёлка"))
	replacements := map[rune]rune{'е': 'ё'}

	testCases := []struct {
		name    string
		input   string
		stutter int
		typos   int
		want    Match
	}{
		{"точное совпадение", "слово", 0, 0, Match{Word: "слово"}},
		{"замена е на ё", "елка", 0, 0, Match{Word: "ёлка"}},
		{"соседняя клавиша", "сдово", 0, 1, Match{Word: "слово", Typos: 1}},
		{"перестановка", "солво", 0, 1, Match{Word: "слово", Typos: 1}},
		{"пропущенная буква", "сово", 0, 1, Match{Word: "слово", Typos: 1}},
		{"пропущенная последняя буква", "слов", 0, 1, Match{Word: "слово", Typos: 1}},
		{"лишняя буква", "свлово", 0, 1, Match{Word: "слово", Typos: 1}},
		{"заикание", "дда", 1, 0, Match{Word: "да", Stutter: 1}},
		{"заикание через дефис", "д-да", 1, 0, Match{Word: "да", Stutter: 1}},
		{"двойное заикание", "ддда", 2, 0, Match{Word: "да", Stutter: 2}},
		{"заикание сверх бюджета", "ддда", 1, 0, Match{}},
		{"повтор гласной", "даа", 1, 0, Match{Word: "да", Stutter: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := d.Search(tc.input, replacements, tc.stutter, tc.typos)
			if tc.want.Word == "" {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1, "%v", wordsOf(got))
			assert.Equal(t, tc.want.Word, got[0].Word)
			assert.Equal(t, tc.want.Typos, got[0].Typos)
			assert.Equal(t, tc.want.Stutter, got[0].Stutter)
			assert.NotEmpty(t, got[0].Payloads)
		})
	}
}

// Пропущенная буква перебирает все переходы узла, включая длинные цепочки соседей в guide.
func TestSearch_MissingLetterVisitsAllChildren(t *testing.T) {
	keys := []string{"ка", "кб", "кв", "кг", "кд", "ке", "кж"}
	d := buildWords(t, FormatWords, words(keys...))

	got := d.Search("к", nil, 0, 1)
	assert.ElementsMatch(t, keys, wordsOf(got))
	for _, m := range got {
		assert.Equal(t, 1, m.Typos)
	}
}

func TestSearch_ExactBaseline(t *testing.T) {
	keys := []string{"планета", "план", "планер", "ёлка", "в", "красный"}
	d := buildWords(t, FormatWords, words(keys...))

	for _, k := range keys {
		got := d.Search(k, nil, 0, 0)
		require.Len(t, got, 1, k)
		assert.Equal(t, k, got[0].Word)
		assert.Zero(t, got[0].Typos)
		assert.Zero(t, got[0].Stutter)
	}

	for _, miss := range []string{"пла", "планеты", "", "日本"} {
		assert.Empty(t, d.Search(miss, nil, 0, 0), miss)
	}
}

func TestSearch_RespectsBudgets(t *testing.T) {
	d := buildWords(t, FormatWords, words("планета", "план", "планер", "плато", "лента", "нет", "да"))
	inputs := []string{"пплланета", "планнер", "плнаета", "нннет", "д-да", "лентта", "патно", "xyz"}

	for _, in := range inputs {
		for stutter := 0; stutter <= 2; stutter++ {
			for typos := 0; typos <= 2; typos++ {
				for _, m := range d.Search(in, nil, stutter, typos) {
					assert.LessOrEqual(t, m.Stutter, stutter, in)
					assert.LessOrEqual(t, m.Typos, typos, in)
				}
			}
		}
	}
}

func TestSearch_KeepsFewestCorrections(t *testing.T) {
	d := buildWords(t, FormatWords, words("кот", "кто"))

	got := d.Search("кот", nil, 0, 2)
	byWord := make(map[string]Match)
	for _, m := range got {
		byWord[m.Word] = m
	}
	require.Contains(t, byWord, "кот")
	assert.Zero(t, byWord["кот"].Typos)
	require.Contains(t, byWord, "кто")
	assert.Equal(t, 1, byWord["кто"].Typos)
}

func TestSearch_Raw(t *testing.T) {
	b := NewBuilder(FormatRaw)
	require.NoError(t, b.Add("ab", 0))
	require.NoError(t, b.Add("abc", 0))
	d, err := b.Build()
	require.NoError(t, err)

	got := d.Search("a", nil, 0, 0)
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []Payload{{'b'}, {'b', 'c'}}, got[0].Payloads)
}

func FuzzSearch(f *testing.F) {
	for _, s := range []string{"слово", "д-да", "ннет", "", "-", "日本", "солво"} {
		f.Add(s, 1, 1)
	}
	b := NewBuilder(FormatWords)
	for i, k := range []string{"слово", "да", "нет", "слон", "слива"} {
		if err := b.AddPayload(k, Payload{i, 0}); err != nil {
			f.Fatal(err)
		}
	}
	d, err := b.Build()
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, input string, stutter, typos int) {
		if len(input) > 32 {
			return
		}
		stutter, typos = stutter&3, typos&1
		for _, m := range d.Search(input, map[rune]rune{'е': 'ё'}, stutter, typos) {
			if m.Stutter > stutter || m.Typos > typos {
				t.Fatalf("бюджет превышен: %+v", m)
			}
			if len(m.Payloads) == 0 {
				t.Fatalf("результат без значений: %+v", m)
			}
		}
	})
}

func BenchmarkSearch(b *testing.B) {
	builder := NewBuilder(FormatWords)
	keys := []string{"слово", "слова", "словам", "слон", "слива", "сливки", "да", "нет", "планета", "планеты"}
	for i, k := range keys {
		if err := builder.AddPayload(k, Payload{i, 0}); err != nil {
			b.Fatal(err)
		}
	}
	d, err := builder.Build()
	if err != nil {
		b.Fatal(err)
	}

	for _, typos := range []int{0, 1, 2} {
		b.Run(fmt.Sprintf("typos_%d", typos), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				d.Search("плаанета", map[rune]rune{'е': 'ё'}, 1, typos)
			}
		})
	}
}

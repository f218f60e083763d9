package analyzer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/steosofficial/azmorph/config"
	"github.com/steosofficial/azmorph/dawg"
	"github.com/stretchr/testify/require"
)

// Маленький словарь для тестов: семь парадигм и полтора десятка словоформ.

var testSuffixes = []string{"", "а", "ы", "е", "у", "ой", "ый", "ого", "ому", "ее", "ать", "аю", "о", "и"}

// testTags[i] - пара (внутренняя нотация, русская нотация) тега i.
var testTags = [][2]string{
	{"NOUN,inan,femn sing,nomn", "СУЩ,неод,жр ед,им"},
	{"NOUN,inan,femn sing,gent", "СУЩ,неод,жр ед,рд"},
	{"NOUN,inan,femn sing,datv", "СУЩ,неод,жр ед,дт"},
	{"NOUN,inan,femn sing,accs", "СУЩ,неод,жр ед,вн"},
	{"NOUN,inan,femn sing,ablt", "СУЩ,неод,жр ед,тв"},
	{"NOUN,inan,femn plur,nomn", "СУЩ,неод,жр мн,им"},
	{"ADJF,Qual masc,sing,nomn", "П,кач мр,ед,им"},
	{"ADJF,Qual masc,sing,gent", "П,кач мр,ед,рд"},
	{"ADJF,Qual masc,sing,datv", "П,кач мр,ед,дт"},
	{"COMP,Qual Cmp2", "КОМП,кач сравн2"},
	{"INFN,impf,tran", "ИНФ,несов,перех"},
	{"VERB,impf,tran sing,1per,pres,indc", "Г,несов,перех ед,1л,наст,изъяв"},
	{"ADVB", "Н"},
	{"NOUN,anim,masc,Surn sing,nomn", "СУЩ,од,мр,фам ед,им"},
	{"PREP", "ПР"},
}

// Парадигма - три блока: суффиксы, теги, префиксы форм.
var testParadigms = [][]uint16{
	{1, 2, 3, 4, 5, 2, 0, 1, 2, 3, 4, 5, 0, 0, 0, 0, 0, 0},   // планета
	{6, 7, 8, 9, 6, 7, 8, 9, 0, 0, 0, 1},                     // красный, покраснее
	{10, 11, 10, 11, 0, 0},                                   // делать
	{12, 12, 0},                                              // быстро
	{0, 13, 0},                                               // иванов
	{0, 14, 0},                                               // в
	{1, 13, 3, 4, 5, 13, 0, 1, 2, 3, 4, 5, 0, 0, 0, 0, 0, 0}, // ёлка
}

var testWords = map[string][]dawg.Payload{
	"планета":   {{0, 0}},
	"планеты":   {{0, 1}, {0, 5}},
	"планете":   {{0, 2}},
	"планету":   {{0, 3}},
	"планетой":  {{0, 4}},
	"ёлка":      {{6, 0}},
	"ёлки":      {{6, 1}, {6, 5}},
	"ёлку":      {{6, 3}},
	"красный":   {{1, 0}},
	"красного":  {{1, 1}},
	"красному":  {{1, 2}},
	"покраснее": {{1, 3}},
	"делать":    {{2, 0}},
	"делаю":     {{2, 1}},
	"быстро":    {{3, 0}},
	"иванов":    {{4, 0}},
	"в":         {{5, 0}},
}

// Предсказание по суффиксу для слов без приставки формы.
var testPredictions = map[string][]dawg.Payload{
	"ета": {{5, 0, 0}},
	"ный": {{2, 1, 0}},
}

var testProbabilities = map[string]uint32{
	"планеты:NOUN,inan,femn sing,gent": 300000,
	"планеты:NOUN,inan,femn plur,nomn": 700000,
}

func buildTestDAWG(t testing.TB, format dawg.Format, entries map[string][]dawg.Payload) *dawg.DAWG {
	t.Helper()
	b := dawg.NewBuilder(format)
	for key, payloads := range entries {
		for _, p := range payloads {
			require.NoError(t, b.AddPayload(key, p))
		}
	}
	d, err := b.Build()
	require.NoError(t, err)
	return d
}

func buildTestProbabilities(t testing.TB) *dawg.DAWG {
	t.Helper()
	b := dawg.NewBuilder(dawg.FormatInt)
	for key, v := range testProbabilities {
		require.NoError(t, b.Add(key, v))
	}
	d, err := b.Build()
	require.NoError(t, err)
	return d
}

func testTagTable() []*Tag {
	tags := make([]*Tag, len(testTags))
	for i, pair := range testTags {
		tags[i] = MakeTag(pair[0], pair[1])
	}
	return tags
}

func newTestDictionary(t testing.TB) *Dictionary {
	t.Helper()
	dict, err := NewDictionary(DictionaryData{
		Words:         buildTestDAWG(t, dawg.FormatWords, testWords),
		Predictions:   []*dawg.DAWG{buildTestDAWG(t, dawg.FormatProbs, testPredictions)},
		Probabilities: buildTestProbabilities(t),
		Paradigms:     testParadigms,
		Suffixes:      testSuffixes,
		Tags:          testTagTable(),
	})
	require.NoError(t, err)
	return dict
}

func newTestAnalyzer(t testing.TB, configure func(cfg *config.Config)) *Analyzer {
	t.Helper()
	cfg := config.NewConfig()
	if configure != nil {
		configure(cfg)
	}
	a, err := New(newTestDictionary(t), cfg)
	require.NoError(t, err)
	return a
}

// writeTestDictionary записывает словарь в каталог в формате файлов на диске.
func writeTestDictionary(t testing.TB, dir string) {
	t.Helper()
	writeDAWG := func(name string, d *dawg.DAWG) {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		defer f.Close()
		_, err = d.WriteTo(f)
		require.NoError(t, err)
	}
	writeJSON := func(name string, v any) {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	writeDAWG(WordsFile, buildTestDAWG(t, dawg.FormatWords, testWords))
	writeDAWG("prediction-suffixes-0.dawg", buildTestDAWG(t, dawg.FormatProbs, testPredictions))
	writeDAWG(ProbabilitiesFile, buildTestProbabilities(t))

	paradigms, err := EncodeParadigms(testParadigms)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ParadigmsFile), paradigms, 0o644))

	internal := make([]string, len(testTags))
	external := make([]string, len(testTags))
	for i, pair := range testTags {
		internal[i], external[i] = pair[0], pair[1]
	}
	writeJSON(TagsIntFile, internal)
	writeJSON(TagsExtFile, external)
	writeJSON(SuffixesFile, testSuffixes)
}

package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Коэффициенты оценки догадок.
const (
	particleFactor       = 0.9
	adverbFactor         = 0.9
	hyphenTailFactor     = 0.2
	hyphenFixedFactor    = 0.3
	knownPrefixFactor    = 0.7
	unknownPrefixFactor  = 0.3
	regexpScore          = 0.9
	abbrScore            = 0.5
	abbrIgnoreCaseScore  = 0.2
	initialScore         = 0.1
	minGuessStemLen      = 3
	maxUnknownPrefixLen  = 5
	maxAbbrCaps          = 5
	maxPredictedSuffix   = 5
	minSuffixGuessLength = 4
)

// initials - заглавные буквы, которые могут быть инициалами и входить в аббревиатуры.
const initials = "АБВГДЕЖЗИКЛМНОПРСТУФХЦЧШЩЭЮЯ"

// particles - частицы, которые пишутся через дефис.
var particles = []string{"-то", "-ка", "-таки", "-де", "-тко", "-тка", "-с", "-ста"}

// knownPrefixes - приставки, с которыми слово разбирается по своей второй части.
var knownPrefixes = []string{
	"авиа", "авто", "аква", "анти", "анти-", "антропо", "архи", "арт", "арт-", "астро", "аудио", "аэро",
	"без", "бес", "био", "вело", "взаимо", "вне", "внутри", "видео", "вице-", "вперед", "впереди",
	"гекто", "гелио", "гео", "гетеро", "гига", "гигро", "гипер", "гипо", "гомо",
	"дву", "двух", "де", "дез", "дека", "деци", "дис", "до", "евро", "за", "зоо", "интер", "инфра",
	"квази", "квази-", "кило", "кино", "контр", "контр-", "космо", "космо-", "крипто", "лейб-", "лже", "лже-",
	"макро", "макси", "макси-", "мало", "меж", "медиа", "медиа-", "мега", "мета", "мета-", "метео", "метро", "микро",
	"милли", "мини", "мини-", "мно", "много", "мото", "мульти", "нано", "нарко", "не", "небез", "недо", "нейро", "нео",
	"низко", "обер-", "обще", "одно", "около", "орто", "палео", "пан", "пара", "пента", "пере", "пиро", "поли", "полу",
	"после", "пост", "пост-", "порно", "пра", "пра-", "пред", "пресс-", "противо", "противо-", "прото", "псевдо", "псевдо-",
	"радио", "разно", "ре", "ретро", "ретро-", "само", "санти", "сверх", "сверх-", "спец", "суб", "супер", "супер-", "супра",
	"теле", "тетра", "топ-", "транс", "транс-", "ультра", "унтер-", "штаб-", "экзо", "эко", "эндо", "эконом-", "экс", "экс-",
	"экстра", "экстра-", "электро", "энерго", "этно",
}

// suffixCoeffs[n] - вес предсказания по суффиксу длины n.
var suffixCoeffs = [maxPredictedSuffix + 1]float64{0, 0.2, 0.3, 0.4, 0.5, 0.6}

var (
	cases6 = [...][2]string{{"nomn", "им"}, {"gent", "рд"}, {"datv", "дт"}, {"accs", "вн"}, {"ablt", "тв"}, {"loct", "пр"}}

	abbrTags     = makeAbbrTags()
	nameTags     = makeInitialsTags("Name", "имя")
	patronymTags = makeInitialsTags("Patr", "отч")
	advbTag      = MakeTag("ADVB", "Н")
)

// makeAbbrTags строит теги несклоняемой аббревиатуры: три рода, шесть падежей, два числа.
func makeAbbrTags() []*Tag {
	genders := [...][2]string{{"masc", "мр"}, {"femn", "жр"}, {"neut", "ср"}}
	numbers := [...][2]string{{"sing", "ед"}, {"plur", "мн"}}
	tags := make([]*Tag, 0, len(genders)*len(cases6)*len(numbers))
	for _, g := range genders {
		for _, c := range cases6 {
			for _, n := range numbers {
				tags = append(tags, MakeTag(
					"NOUN,inan,"+g[0]+",Fixd,Abbr "+n[0]+","+c[0],
					"СУЩ,неод,"+g[1]+",0,аббр "+n[1]+","+c[1],
				))
			}
		}
	}
	return tags
}

// makeInitialsTags строит теги инициала имени (Name) или отчества (Patr).
func makeInitialsTags(kind, kindExt string) []*Tag {
	genders := [...][2]string{{"masc", "мр"}, {"femn", "жр"}}
	tags := make([]*Tag, 0, len(genders)*len(cases6))
	for _, g := range genders {
		for _, c := range cases6 {
			tags = append(tags, MakeTag(
				"NOUN,anim,"+g[0]+",Sgtm,"+kind+",Fixd,Abbr,Init sing,"+c[0],
				"СУЩ,од,"+g[1]+",sg,"+kindExt+",0,аббр,иниц ед,"+c[1],
			))
		}
	}
	return tags
}

// builtinParsers - встроенные парсеры по именам.
var builtinParsers = map[string]ParserFunc{
	"Dictionary":     parseDictionary,
	"AbbrName":       initialsParser(nameTags),
	"AbbrPatronymic": initialsParser(patronymTags),
	"IntNumber":      regexpParser(`^[−-]?[0-9]+$`, MakeTag("NUMB,intg", "ЧИСЛО,цел")),
	"RealNumber":     regexpParser(`^[−-]?([0-9]*[.,][0-9]+)$`, MakeTag("NUMB,real", "ЧИСЛО,вещ")),
	"Punctuation": regexpParser(
		`^[\x{2000}-\x{206F}\x{2E00}-\x{2E7F}\\'!"#$%&()*+,\-./:;<=>?@\[\]^_`+"`"+`{|}~]+$`,
		MakeTag("PNCT", "ЗПР"),
	),
	"RomanNumber":    regexpParser(`^M{0,4}(CM|CD|D?C{0,3})(XC|XL|L?X{0,3})(IX|IV|V?I{0,3})$`, MakeTag("ROMN", "РИМ")),
	"Latin":          regexpParser(`[A-Za-z\x{00C0}-\x{00D6}\x{00D8}-\x{00f6}\x{00f8}-\x{024f}]$`, MakeTag("LATN", "ЛАТ")),
	"HyphenParticle": parseHyphenParticle,
	"HyphenAdverb":   parseHyphenAdverb,
	"HyphenWords":    parseHyphenWords,
	"PrefixKnown":    parsePrefixKnown,
	"PrefixUnknown":  parsePrefixUnknown,
	"SuffixKnown":    parseSuffixKnown,
	"Abbr":           parseAbbr,
}

// Caser хранит состояние, поэтому создается на каждый вызов.
func toLower(s string) string {
	return cases.Lower(language.Russian).String(s)
}

func toUpper(s string) string {
	return cases.Upper(language.Russian).String(s)
}

// isCapitalized - слово написано с заглавной буквы, но не целиком заглавными.
func (a *Analyzer) isCapitalized(word string) bool {
	if a.cfg.IgnoreCase || word == "" {
		return false
	}
	first, size := utf8.DecodeRuneInString(word)
	rest := word[size:]
	return unicode.ToLower(first) != first && toUpper(rest) != rest
}

// capitalizationFits отсекает имена собственные, написанные со строчной буквы.
func (a *Analyzer) capitalizationFits(p *Parse, capitalized bool) bool {
	return a.cfg.IgnoreCase || !p.tag.IsCapitalized() || capitalized
}

// dictionaryParses превращает результаты поиска в словарные разборы.
func (a *Analyzer) dictionaryParses(word string) ([]*Parse, error) {
	matches, err := a.lookup(word)
	if err != nil {
		return nil, err
	}
	var parses []*Parse
	for _, m := range matches {
		for _, pl := range m.Payloads {
			if len(pl) < 2 {
				continue
			}
			if p, ok := a.dict.NewParse(m.Word, pl[0], pl[1], m.Stutter, m.Typos); ok {
				parses = append(parses, p)
			}
		}
	}
	return parses, nil
}

func parseDictionary(a *Analyzer, word string) ([]*Parse, error) {
	capitalized := a.isCapitalized(word)
	found, err := a.dictionaryParses(toLower(word))
	if err != nil {
		return nil, err
	}
	parses := found[:0]
	for _, p := range found {
		if a.capitalizationFits(p, capitalized) {
			parses = append(parses, p)
		}
	}
	return parses, nil
}

// parseAbbr разбирает несклоняемые аббревиатуры: ВК, ЖК, ОАО, ЛенСпецСМУ.
func parseAbbr(a *Analyzer, word string) ([]*Parse, error) {
	runes := []rune(word)
	// Однобуквенные слова разбираются как инициалы.
	if len(runes) < 2 || strings.ContainsRune(word, '-') {
		return nil, nil
	}
	// Первая и последняя буквы заглавные, иначе сокращение, вероятно, склоняется.
	if isInitial(runes[0]) && isInitial(runes[len(runes)-1]) {
		caps := 0
		for _, r := range runes {
			if isInitial(r) {
				caps++
			}
		}
		if caps <= maxAbbrCaps {
			return plainParses(word, abbrTags, abbrScore), nil
		}
	}

	// Без учета регистра - только короткие аббревиатуры из одних "инициалов".
	if !a.cfg.IgnoreCase || len(runes) > maxAbbrCaps {
		return nil, nil
	}
	word = toUpper(word)
	for _, r := range word {
		if !isInitial(r) {
			return nil, nil
		}
	}
	return plainParses(word, abbrTags, abbrIgnoreCaseScore), nil
}

func isInitial(r rune) bool {
	return strings.ContainsRune(initials, r)
}

func plainParses(word string, tags []*Tag, score float64) []*Parse {
	parses := make([]*Parse, len(tags))
	for i, t := range tags {
		parses[i] = NewParse(word, t, score)
	}
	return parses
}

// initialsParser разбирает одиночную заглавную букву как инициал.
func initialsParser(tags []*Tag) ParserFunc {
	return func(a *Analyzer, word string) ([]*Parse, error) {
		if utf8.RuneCountInString(word) != 1 {
			return nil, nil
		}
		if a.cfg.IgnoreCase {
			word = toUpper(word)
		}
		r, _ := utf8.DecodeRuneInString(word)
		if !isInitial(r) {
			return nil, nil
		}
		return plainParses(word, tags, initialScore), nil
	}
}

func regexpParser(expr string, tag *Tag) ParserFunc {
	re := regexp.MustCompile(expr)
	return func(a *Analyzer, word string) ([]*Parse, error) {
		if a.cfg.IgnoreCase {
			word = toUpper(word)
		}
		if word == "" || !re.MatchString(word) {
			return nil, nil
		}
		return []*Parse{NewParse(word, tag, regexpScore)}, nil
	}
}

// parseHyphenParticle: слово + частица (смотри-ка, кто-то).
func parseHyphenParticle(a *Analyzer, word string) ([]*Parse, error) {
	word = toLower(word)
	var parses []*Parse
	for _, particle := range particles {
		base, ok := strings.CutSuffix(word, particle)
		if !ok || base == "" {
			continue
		}
		found, err := a.dictionaryParses(base)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			parses = append(parses, p.derived("", particle, particleFactor))
		}
	}
	return parses, nil
}

// parseHyphenAdverb: "по-" + прилагательное в дательном падеже (по-западному).
func parseHyphenAdverb(a *Analyzer, word string) ([]*Parse, error) {
	word = toLower(word)
	rest, ok := strings.CutPrefix(word, "по-")
	if !ok || runeLen(word) < 5 {
		return nil, nil
	}

	found, err := a.dictionaryParses(rest)
	if err != nil {
		return nil, err
	}
	var parses []*Parse
	used := mapset.NewThreadUnsafeSet[string]()
	for _, p := range found {
		if used.Contains(p.word) || !p.Matches(Grammemes{ADJF, Sing, Datv}) {
			continue
		}
		used.Add(p.word)
		adverb := NewParse("по-"+p.word, advbTag, p.score*adverbFactor)
		adverb.stutter, adverb.typos = p.stutter, p.typos
		parses = append(parses, adverb)
	}
	return parses, nil
}

// parseHyphenWords: слово + "-" + слово (интернет-магазин, компания-производитель).
func parseHyphenWords(a *Analyzer, word string) ([]*Parse, error) {
	word = toLower(word)
	for _, prefix := range knownPrefixes {
		if strings.HasSuffix(prefix, "-") && strings.HasPrefix(word, prefix) {
			return nil, nil
		}
	}

	parts := strings.Split(word, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		if len(parts) <= 2 {
			return nil, nil
		}
		// Несколько дефисов: разбираем только последнюю часть.
		end := parts[len(parts)-1]
		right, err := parseDictionary(a, end)
		if err != nil {
			return nil, err
		}
		prefix := word[:len(word)-len(end)]
		parses := make([]*Parse, 0, len(right))
		for _, r := range right {
			parses = append(parses, r.derived(prefix, r.suffix, hyphenTailFactor))
		}
		return parses, nil
	}

	left, err := parseDictionary(a, parts[0])
	if err != nil {
		return nil, err
	}
	right, err := parseDictionary(a, parts[1])
	if err != nil {
		return nil, err
	}

	var parses []*Parse
	maxStutter, maxTypos := int(a.cfg.Stutter), a.typoLimit()
	for _, l := range left {
		if l.tag.Has(Abbr) {
			continue
		}
		for _, r := range right {
			if !l.Matches(r, agreementCategories...) {
				continue
			}
			if l.stutter+r.stutter > maxStutter || l.typos+r.typos > maxTypos {
				continue
			}
			parses = append(parses, Combine(l, r))
		}
	}
	// Первая часть как неизменяемая приставка.
	for _, r := range right {
		parses = append(parses, r.derived(parts[0]+"-", r.suffix, hyphenFixedFactor))
	}
	return parses, nil
}

// guessFromEnd разбирает окончание слова end по словарю и оставляет
// только продуктивные разборы с подходящим регистром.
func (a *Analyzer) guessFromEnd(end, prefix string, factor float64, capitalized bool) ([]*Parse, error) {
	right, err := parseDictionary(a, end)
	if err != nil {
		return nil, err
	}
	var parses []*Parse
	for _, r := range right {
		if !r.tag.IsProductive() || !a.capitalizationFits(r, capitalized) {
			continue
		}
		parses = append(parses, r.derived(prefix, r.suffix, factor))
	}
	return parses, nil
}

func parsePrefixKnown(a *Analyzer, word string) ([]*Parse, error) {
	capitalized := a.isCapitalized(word)
	word = toLower(word)
	length := runeLen(word)

	var parses []*Parse
	for _, prefix := range knownPrefixes {
		if length-runeLen(prefix) < minGuessStemLen {
			continue
		}
		end, ok := strings.CutPrefix(word, prefix)
		if !ok {
			continue
		}
		found, err := a.guessFromEnd(end, prefix, knownPrefixFactor, capitalized)
		if err != nil {
			return nil, err
		}
		parses = append(parses, found...)
	}
	return parses, nil
}

func parsePrefixUnknown(a *Analyzer, word string) ([]*Parse, error) {
	capitalized := a.isCapitalized(word)
	runes := []rune(toLower(word))

	var parses []*Parse
	for n := 1; n <= maxUnknownPrefixLen; n++ {
		if len(runes)-n < minGuessStemLen {
			break
		}
		found, err := a.guessFromEnd(string(runes[n:]), string(runes[:n]), unknownPrefixFactor, capitalized)
		if err != nil {
			return nil, err
		}
		parses = append(parses, found...)
	}
	return parses, nil
}

// parseSuffixKnown предсказывает парадигму по окончанию слова. Найдя подходящий
// суффикс, парсер проверяет еще и суффикс на одну букву короче.
func parseSuffixKnown(a *Analyzer, word string) ([]*Parse, error) {
	if runeLen(word) < minSuffixGuessLength {
		return nil, nil
	}
	capitalized := a.isCapitalized(word)
	word = toLower(word)

	var parses []*Parse
	used := mapset.NewThreadUnsafeSet[string]()
	minLen := 1
	for i, prefix := range a.dict.Prefixes() {
		if a.dict.prediction(i) == nil {
			continue
		}
		rest, ok := strings.CutPrefix(word, prefix)
		if !ok {
			continue
		}
		base := []rune(rest)

		for n := maxPredictedSuffix; n >= minLen; n-- {
			if n >= len(base) {
				continue
			}
			left, right := string(base[:len(base)-n]), string(base[len(base)-n:])
			entries, err := a.dict.predict(i, right, a.replacements)
			if err != nil {
				return nil, err
			}

			var found []*Parse
			maxCount := 1
			for _, e := range entries {
				for _, stat := range e.Payloads {
					if len(stat) < 3 {
						continue
					}
					count, paradigmIdx, formIdx := stat[0], stat[1], stat[2]
					p, ok := a.dict.NewParse(prefix+left+e.Word, paradigmIdx, formIdx, 0, 0)
					if !ok || !p.tag.IsProductive() || !a.capitalizationFits(p, capitalized) {
						continue
					}
					key := p.String() + ":" + strconv.Itoa(paradigmIdx) + ":" + strconv.Itoa(formIdx)
					if used.Contains(key) {
						continue
					}
					used.Add(key)
					maxCount = max(maxCount, count)
					p.score = float64(count) * suffixCoeffs[n]
					found = append(found, p)
				}
			}
			if len(found) == 0 {
				continue
			}
			for _, p := range found {
				p.score /= float64(maxCount)
			}
			parses = append(parses, found...)
			minLen = max(n-1, 1)
		}
	}
	return parses, nil
}

// Этот файл содержит морфологический анализатор: цепочку парсеров поверх
// загруженного словаря. Словарь неизменяем, поэтому один анализатор можно
// использовать из любого числа горутин. Результаты нечеткого поиска
// кэшируются в LRU-кэше.
package analyzer

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/steosofficial/azmorph/config"
	"github.com/steosofficial/azmorph/dawg"
	"golang.org/x/text/unicode/norm"
)

// ParserFunc - парсер: возвращает варианты разбора слова (возможно, ни одного).
type ParserFunc func(a *Analyzer, word string) ([]*Parse, error)

// unknownTag - тег слова, которое не разобрал ни один парсер (при ForceParse).
var unknownTag = MakeTag("UNKN", "НЕИЗВ")

type lookupKey struct {
	word    string
	stutter int
	typos   int
}

// Analyzer - морфологический анализатор.
type Analyzer struct {
	dict         *Dictionary
	cfg          *config.Config
	steps        []config.ParserStep
	replacements map[rune]rune

	mu      sync.RWMutex
	parsers map[string]ParserFunc

	cache *lru.Cache[lookupKey, []dawg.Match]
}

// New создает анализатор над загруженным словарем. cfg == nil - настройки по умолчанию.
func New(dict *Dictionary, cfg *config.Config) (*Analyzer, error) {
	if dict == nil {
		return nil, ErrNotInitialized
	}
	if cfg == nil {
		cfg = config.NewConfig()
	} else {
		cfg = cfg.Clone()
	}
	cfg.Validate()

	a := &Analyzer{
		dict:         dict,
		cfg:          cfg,
		steps:        cfg.Steps(),
		parsers:      make(map[string]ParserFunc, len(builtinParsers)),
		replacements: cfg.ReplacementRunes(),
	}
	for name, fn := range builtinParsers {
		a.parsers[name] = fn
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[lookupKey, []dawg.Match](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания кэша: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// Load загружает словарь из cfg.DictPath (или каталога по умолчанию)
// и создает анализатор.
func Load(cfg *config.Config) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	dict, err := LoadDictionary(cfg.DictPath)
	if err != nil {
		return nil, err
	}
	a, err := New(dict, cfg)
	if err != nil {
		dict.Close()
		return nil, err
	}
	return a, nil
}

// Register добавляет или заменяет парсер. Разборы, начатые раньше,
// могут еще вызвать прежний парсер.
func (a *Analyzer) Register(name string, fn ParserFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parsers[name] = fn
}

func (a *Analyzer) parser(name string) (ParserFunc, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	fn, ok := a.parsers[name]
	return fn, ok
}

// Dictionary возвращает словарь анализатора.
func (a *Analyzer) Dictionary() *Dictionary {
	return a.dict
}

// Config возвращает копию настроек анализатора.
func (a *Analyzer) Config() *config.Config {
	return a.cfg.Clone()
}

// Close закрывает словарь.
func (a *Analyzer) Close() error {
	return a.dict.Close()
}

// Analyze возвращает варианты разбора слова, от более вероятных к менее вероятным.
//
// Парсеры вызываются по порядку настроек. Цепочка обрывается после терминального
// парсера (без "?" в имени), если к этому моменту найден разбор без исправлений.
func (a *Analyzer) Analyze(word string) ([]*Parse, error) {
	if !a.dict.Ready() {
		return nil, ErrNotInitialized
	}
	word = norm.NFC.String(word)

	var parses []*Parse
	matched := false
	for _, step := range a.steps {
		fn, ok := a.parser(step.Name)
		if !ok {
			log.Warn().Str("parser", step.Name).Msg("Парсер не найден, пропускаем")
			continue
		}
		found, err := fn(a, word)
		if err != nil {
			return nil, fmt.Errorf("ошибка парсера %s: %w", step.Name, err)
		}
		for _, p := range found {
			p.parser = step.Name
			if p.stutter == 0 && p.typos == 0 {
				matched = true
			}
		}
		parses = append(parses, found...)
		if matched && step.Terminal {
			break
		}
	}

	if len(parses) == 0 && a.cfg.ForceParse {
		parses = append(parses, NewParse(toLower(word), unknownTag, 0))
	}

	a.updateScores(parses)
	if a.cfg.NormalizeScore {
		normalizeScores(parses)
	}
	sort.SliceStable(parses, func(i, j int) bool {
		return parses[i].score > parses[j].score
	})
	return parses, nil
}

// updateScores заменяет оценку словарных разборов на вероятность тега для слова,
// если она известна.
func (a *Analyzer) updateScores(parses []*Parse) {
	for _, p := range parses {
		if p.parser != "Dictionary" {
			continue
		}
		if prob, ok := a.dict.Probability(p.String(), p.tag); ok {
			p.score = prob * DictionaryScore(p.stutter, p.typos)
		}
	}
}

// normalizeScores приводит сумму оценок к единице отдельно для словарных
// разборов и для всех остальных.
func normalizeScores(parses []*Parse) {
	var dictTotal, otherTotal float64
	for _, p := range parses {
		if p.parser == "Dictionary" {
			dictTotal += p.score
		} else {
			otherTotal += p.score
		}
	}
	for _, p := range parses {
		total := otherTotal
		if p.parser == "Dictionary" {
			total = dictTotal
		}
		if total != 0 {
			p.score /= total
		}
	}
}

// lookup ищет слово в словаре. В режиме "auto" опечатки разрешаются по одной,
// пока поиск ничего не нашел и слово длиннее очередного порога.
func (a *Analyzer) lookup(word string) ([]dawg.Match, error) {
	stutter := int(a.cfg.Stutter)
	if !a.cfg.Typos.IsAuto() {
		return a.search(word, stutter, int(a.cfg.Typos))
	}

	matches, err := a.search(word, stutter, 0)
	if err != nil {
		return nil, err
	}
	length := runeLen(word)
	for i := 0; i < len(a.cfg.AutoTypos) && len(matches) == 0 && length > a.cfg.AutoTypos[i]; i++ {
		if matches, err = a.search(word, stutter, i+1); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (a *Analyzer) search(word string, stutter, typos int) ([]dawg.Match, error) {
	key := lookupKey{word: word, stutter: stutter, typos: typos}
	if a.cache != nil {
		if matches, ok := a.cache.Get(key); ok {
			return matches, nil
		}
	}
	matches, err := a.dict.Lookup(word, a.replacements, stutter, typos)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Add(key, matches)
	}
	return matches, nil
}

// typoLimit - предел опечаток для составных слов.
func (a *Analyzer) typoLimit() int {
	return a.cfg.Typos.Limit(a.cfg.AutoTypos)
}

// --- ПАКЕТНАЯ ОБРАБОТКА ---

// chunkSize - размер одного "пакета" для обработки воркером.
const chunkSize = 1000

// parallel вызывает fn для каждого индекса от 0 до n-1, раздавая диапазоны
// индексов пулу воркеров по числу ядер.
func parallel(n int, fn func(i int)) {
	numWorkers := runtime.NumCPU()
	chunksCh := make(chan [2]int, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range chunksCh {
				for i := chunk[0]; i < chunk[1]; i++ {
					fn(i)
				}
			}
		}()
	}

	// Диспетчер нарезает диапазон на чанки.
	for start := 0; start < n; start += chunkSize {
		chunksCh <- [2]int{start, min(start+chunkSize, n)}
	}
	close(chunksCh) // Закрываем канал, чтобы воркеры завершили работу.
	wg.Wait()
}

// AnalyzeList разбирает слова параллельно. Результат i соответствует слову i.
func (a *Analyzer) AnalyzeList(words []string) ([][]*Parse, error) {
	if !a.dict.Ready() {
		return nil, ErrNotInitialized
	}
	results := make([][]*Parse, len(words))
	errs := make([]error, len(words))
	parallel(len(words), func(i int) {
		results[i], errs[i] = a.Analyze(words[i])
	})
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора слова %q: %w", words[i], err)
		}
	}
	return results, nil
}

// InflectList ставит разборы в форму target параллельно. Для разборов,
// у которых подходящей формы нет, в результате nil.
func InflectList(parses []*Parse, target Target, categories ...Grammeme) []*Parse {
	results := make([]*Parse, len(parses))
	parallel(len(parses), func(i int) {
		if parses[i] == nil {
			return
		}
		if p, ok := parses[i].Inflect(target, categories...); ok {
			results[i] = p
		}
	})
	return results
}

package analyzer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
	"github.com/steosofficial/azmorph/dawg"
)

// ErrNotInitialized возвращается при обращении к словарю, который не был загружен
// или уже закрыт.
var ErrNotInitialized = errors.New("словарь не загружен")

// DictionaryData - исходные данные словаря.
type DictionaryData struct {
	Words *dawg.DAWG // Словоформы, формат words: (парадигма, форма).
	// Предсказание по суффиксам, по одному автомату на префикс парадигмы,
	// формат probs: (частота, парадигма, форма). Может быть пустым.
	Predictions   []*dawg.DAWG
	Probabilities *dawg.DAWG // Вероятности "слово:тег" * 10^6, формат int. Необязателен.
	Paradigms     [][]uint16
	Suffixes      []string
	Prefixes      []string // По умолчанию "", "по", "наи".
	Tags          []*Tag
}

// Dictionary - неизменяемый контекст словаря. После создания его можно
// использовать из любого числа горутин. Поиск по автоматам идет под
// блокировкой чтения, Close ждет завершения начатых поисков.
type Dictionary struct {
	words         *dawg.DAWG
	predictions   []*dawg.DAWG
	probabilities *dawg.DAWG
	paradigms     [][]uint16
	suffixes      []string
	prefixes      []string
	tags          []*Tag

	// Отображенные в память файлы, которые освобождает Close.
	mu       sync.RWMutex
	mappings []mmap.MMap
	closed   atomic.Bool
}

// NewDictionary проверяет данные и создает словарь. Все ссылки парадигм
// на суффиксы, теги и префиксы проверяются сразу, чтобы разбор никогда
// не обращался за пределы таблиц.
func NewDictionary(data DictionaryData) (*Dictionary, error) {
	if data.Words == nil {
		return nil, fmt.Errorf("%w: нет автомата словоформ", ErrNotInitialized)
	}
	if data.Words.Format() != dawg.FormatWords {
		return nil, fmt.Errorf("%w: автомат словоформ в формате %s", dawg.ErrMalformed, data.Words.Format())
	}
	prefixes := data.Prefixes
	if prefixes == nil {
		prefixes = paradigmPrefixes
	}
	if len(data.Predictions) > len(prefixes) {
		return nil, fmt.Errorf("%w: автоматов предсказания (%d) больше, чем префиксов (%d)",
			ErrMalformedParadigms, len(data.Predictions), len(prefixes))
	}
	for i, p := range data.Predictions {
		if p != nil && p.Format() != dawg.FormatProbs {
			return nil, fmt.Errorf("%w: автомат предсказания %d в формате %s", dawg.ErrMalformed, i, p.Format())
		}
	}
	if data.Probabilities != nil && data.Probabilities.Format() != dawg.FormatInt {
		return nil, fmt.Errorf("%w: автомат вероятностей в формате %s", dawg.ErrMalformed, data.Probabilities.Format())
	}

	for i, p := range data.Paradigms {
		if len(p)%3 != 0 {
			return nil, fmt.Errorf("%w: длина парадигмы %d (%d) не делится на 3", ErrMalformedParadigms, i, len(p))
		}
		n := len(p) / 3
		for f := 0; f < n; f++ {
			if int(p[f]) >= len(data.Suffixes) {
				return nil, fmt.Errorf("%w: парадигма %d, форма %d: суффикс %d вне таблицы", ErrMalformedParadigms, i, f, p[f])
			}
			if int(p[n+f]) >= len(data.Tags) || data.Tags[p[n+f]] == nil {
				return nil, fmt.Errorf("%w: парадигма %d, форма %d: тег %d вне таблицы", ErrMalformedParadigms, i, f, p[n+f])
			}
			if int(p[2*n+f]) >= len(prefixes) {
				return nil, fmt.Errorf("%w: парадигма %d, форма %d: префикс %d вне таблицы", ErrMalformedParadigms, i, f, p[2*n+f])
			}
		}
	}

	predictions := make([]*dawg.DAWG, len(prefixes))
	copy(predictions, data.Predictions)

	return &Dictionary{
		words:         data.Words,
		predictions:   predictions,
		probabilities: data.Probabilities,
		paradigms:     data.Paradigms,
		suffixes:      data.Suffixes,
		prefixes:      prefixes,
		tags:          data.Tags,
	}, nil
}

// Ready сообщает, можно ли выполнять поиск.
func (d *Dictionary) Ready() bool {
	return d != nil && !d.closed.Load()
}

// Close освобождает отображенные в память файлы. После Close словарь
// отвечает ErrNotInitialized.
func (d *Dictionary) Close() error {
	if d == nil || d.closed.Swap(true) {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for _, m := range d.mappings {
		if err := m.Unmap(); err != nil {
			errs = append(errs, err)
		}
	}
	d.mappings = nil
	return errors.Join(errs...)
}

// Lookup ищет слово в словаре с учетом замен, заиканий и опечаток.
func (d *Dictionary) Lookup(word string, replacements map[rune]rune, stutter, typos int) ([]dawg.Match, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.Ready() {
		return nil, ErrNotInitialized
	}
	return d.words.Search(word, replacements, stutter, typos), nil
}

// Prefixes возвращает префиксы форм.
func (d *Dictionary) Prefixes() []string {
	return d.prefixes
}

// prediction возвращает автомат предсказания для i-го префикса или nil.
func (d *Dictionary) prediction(i int) *dawg.DAWG {
	if i < 0 || i >= len(d.predictions) {
		return nil
	}
	return d.predictions[i]
}

// predict ищет суффикс в автомате предсказания для i-го префикса.
func (d *Dictionary) predict(i int, suffix string, replacements map[rune]rune) ([]dawg.Match, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.Ready() {
		return nil, ErrNotInitialized
	}
	predictions := d.prediction(i)
	if predictions == nil {
		return nil, nil
	}
	return predictions.Search(suffix, replacements, 0, 0), nil
}

// Probability возвращает вероятность тега для слова, если она известна.
func (d *Dictionary) Probability(word string, tag *Tag) (float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.probabilities == nil || !d.Ready() {
		return 0, false
	}
	v, ok := d.probabilities.Find(word + ":" + tag.String())
	if !ok {
		return 0, false
	}
	return float64(v) / 1e6, true
}

// FormCount возвращает число форм парадигмы.
func (d *Dictionary) FormCount(paradigmIdx int) int {
	if paradigmIdx < 0 || paradigmIdx >= len(d.paradigms) {
		return 0
	}
	return len(d.paradigms[paradigmIdx]) / 3
}

func (d *Dictionary) formTag(paradigm []uint16, formIdx int) *Tag {
	return d.tags[paradigm[len(paradigm)/3+formIdx]]
}

func (d *Dictionary) formPrefix(paradigm []uint16, formIdx int) string {
	return d.prefixes[paradigm[2*len(paradigm)/3+formIdx]]
}

func (d *Dictionary) formSuffix(paradigm []uint16, formIdx int) string {
	return d.suffixes[paradigm[formIdx]]
}

// NewParse создает словарный разбор слова word как формы formIdx парадигмы
// paradigmIdx. Основа получается отбрасыванием префикса и суффикса этой формы.
func (d *Dictionary) NewParse(word string, paradigmIdx, formIdx, stutter, typos int) (*Parse, bool) {
	if paradigmIdx < 0 || paradigmIdx >= len(d.paradigms) {
		return nil, false
	}
	paradigm := d.paradigms[paradigmIdx]
	if formIdx < 0 || formIdx >= len(paradigm)/3 {
		return nil, false
	}

	runes := []rune(word)
	prefixLen := utf8.RuneCountInString(d.formPrefix(paradigm, formIdx))
	suffixLen := utf8.RuneCountInString(d.formSuffix(paradigm, formIdx))
	if prefixLen+suffixLen > len(runes) {
		return nil, false
	}

	return &Parse{
		kind:        KindDictionary,
		word:        word,
		tag:         d.formTag(paradigm, formIdx),
		score:       DictionaryScore(stutter, typos),
		stutter:     stutter,
		typos:       typos,
		dict:        d,
		paradigmIdx: paradigmIdx,
		formIdx:     formIdx,
		stem:        string(runes[prefixLen : len(runes)-suffixLen]),
	}, true
}

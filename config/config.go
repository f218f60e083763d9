// Package config описывает настройки анализатора и их загрузку из YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	// EnvDictPath - имя переменной окружения для переопределения пути к словарю.
	EnvDictPath = "AZMORPH_DICT_PATH"

	// DefaultCacheSize - размер LRU-кэша словарных поисков по умолчанию.
	DefaultCacheSize = 4096
)

// ErrNegativeBudget - в YAML указан отрицательный бюджет. Режим "auto"
// задается только словом auto.
var ErrNegativeBudget = errors.New("отрицательный бюджет")

// Budget - ограничение на число исправлений. Для опечаток допустимо значение "auto".
type Budget int

const (
	// Auto - опечатки разрешаются постепенно, по мере роста длины слова.
	Auto Budget = -1
	// Unlimited - бюджет без ограничения.
	Unlimited Budget = math.MaxInt32
)

// IsAuto сообщает, задан ли бюджет как "auto".
func (b Budget) IsAuto() bool {
	return b == Auto
}

// Limit возвращает числовой предел; для "auto" - последнюю ступень эскалации.
func (b Budget) Limit(autoSteps []int) int {
	if b == Auto {
		return len(autoSteps)
	}
	return int(b)
}

func (b Budget) String() string {
	switch b {
	case Auto:
		return "auto"
	case Unlimited:
		return "unlimited"
	}
	return strconv.Itoa(int(b))
}

// UnmarshalYAML принимает число, "auto" или "unlimited".
func (b *Budget) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "auto":
		*b = Auto
		return nil
	case "unlimited", "inf":
		*b = Unlimited
		return nil
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil {
		return fmt.Errorf("ошибка разбора бюджета %q: %w", node.Value, err)
	}
	if n < 0 {
		return fmt.Errorf("ошибка разбора бюджета %q: %w", node.Value, ErrNegativeBudget)
	}
	*b = Budget(n)
	return nil
}

// MarshalYAML записывает бюджет в том же виде, в котором он читается.
func (b Budget) MarshalYAML() (any, error) {
	if b == Auto || b == Unlimited {
		return b.String(), nil
	}
	return int(b), nil
}

// Config - настройки анализатора.
type Config struct {
	IgnoreCase     bool              `yaml:"ignoreCase"`
	Replacements   map[string]string `yaml:"replacements"`
	Stutter        Budget            `yaml:"stutter"`
	Typos          Budget            `yaml:"typos"`
	AutoTypos      []int             `yaml:"autoTypos"`
	Parsers        []string          `yaml:"parsers"`
	ForceParse     bool              `yaml:"forceParse"`
	NormalizeScore bool              `yaml:"normalizeScore"`
	DictPath       string            `yaml:"dictPath"`
	CacheSize      int               `yaml:"cacheSize"`
}

// DefaultParsers - порядок парсеров по умолчанию. Знак "?" в конце имени
// означает, что после парсера цепочка продолжается даже при точном совпадении.
var DefaultParsers = []string{
	"Dictionary?", "AbbrName?", "AbbrPatronymic",
	"IntNumber", "RealNumber", "Punctuation", "RomanNumber?", "Latin",
	"HyphenParticle", "HyphenAdverb", "HyphenWords",
	"PrefixKnown", "PrefixUnknown?", "SuffixKnown?", "Abbr",
}

// DefaultAutoTypos - пороги длины слова для каждой следующей опечатки в режиме "auto".
var DefaultAutoTypos = []int{4, 9}

// NewConfig создает настройки по умолчанию.
func NewConfig() *Config {
	return &Config{
		Replacements:   map[string]string{"е": "ё"},
		Stutter:        Unlimited,
		Typos:          0,
		AutoTypos:      append([]int(nil), DefaultAutoTypos...),
		Parsers:        append([]string(nil), DefaultParsers...),
		NormalizeScore: true,
		CacheSize:      DefaultCacheSize,
	}
}

// Load читает YAML-файл поверх настроек по умолчанию и проверяет результат.
// Переменная окружения AZMORPH_DICT_PATH имеет приоритет над dictPath из файла.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
		}
		// Карта замен из файла заменяет умолчание целиком, а не дополняет его.
		defaults := cfg.Replacements
		cfg.Replacements = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
		}
		if cfg.Replacements == nil {
			cfg.Replacements = defaults
		}
	}
	if env := os.Getenv(EnvDictPath); env != "" {
		cfg.DictPath = env
	}
	cfg.Validate()
	return cfg, nil
}

// Validate исправляет недопустимые значения, сообщая о них в лог.
func (c *Config) Validate() {
	if c.Stutter < 0 {
		log.Error().Msgf("Недопустимый бюджет заиканий %s, используется unlimited", c.Stutter)
		c.Stutter = Unlimited
	}
	if c.Typos < Auto {
		log.Error().Msgf("Недопустимый бюджет опечаток %d, используется 0", int(c.Typos))
		c.Typos = 0
	}
	if len(c.AutoTypos) == 0 {
		c.AutoTypos = append([]int(nil), DefaultAutoTypos...)
	}
	if len(c.Parsers) == 0 {
		log.Warn().Msg("Список парсеров пуст, используется список по умолчанию")
		c.Parsers = append([]string(nil), DefaultParsers...)
	}
	if c.CacheSize < 0 {
		log.Error().Msgf("Недопустимый размер кэша %d, используется %d", c.CacheSize, DefaultCacheSize)
		c.CacheSize = DefaultCacheSize
	}
	for from, to := range c.Replacements {
		if utf8.RuneCountInString(from) != 1 || utf8.RuneCountInString(to) != 1 {
			log.Error().Msgf("Замена %q -> %q должна связывать два символа, пропускаем", from, to)
			delete(c.Replacements, from)
		}
	}
}

// ReplacementRunes возвращает таблицу замен в виде карты символов.
func (c *Config) ReplacementRunes() map[rune]rune {
	out := make(map[rune]rune, len(c.Replacements))
	for from, to := range c.Replacements {
		f, _ := utf8.DecodeRuneInString(from)
		t, _ := utf8.DecodeRuneInString(to)
		if f == utf8.RuneError || t == utf8.RuneError {
			continue
		}
		out[f] = t
	}
	return out
}

// ParserStep - один шаг цепочки парсеров.
type ParserStep struct {
	Name     string
	Terminal bool
}

// Steps разбирает список парсеров на имена и признак терминальности.
func (c *Config) Steps() []ParserStep {
	steps := make([]ParserStep, 0, len(c.Parsers))
	for _, p := range c.Parsers {
		name := strings.TrimSuffix(p, "?")
		if name == "" {
			continue
		}
		steps = append(steps, ParserStep{Name: name, Terminal: name == p})
	}
	return steps
}

// Clone возвращает независимую копию настроек.
func (c *Config) Clone() *Config {
	out := *c
	out.Replacements = make(map[string]string, len(c.Replacements))
	for k, v := range c.Replacements {
		out.Replacements[k] = v
	}
	out.AutoTypos = append([]int(nil), c.AutoTypos...)
	out.Parsers = append([]string(nil), c.Parsers...)
	return &out
}

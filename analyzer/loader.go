// Этот файл содержит загрузку словаря с диска.
// Автоматы отображаются в память через mmap и не копируются в кучу Go.
// Таблица парадигм читается в кучу: на нее ссылаются разборы, которые
// переживают Close словаря.
package analyzer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/rs/zerolog/log"
	"github.com/steosofficial/azmorph/config"
	"github.com/steosofficial/azmorph/dawg"
)

// Имена файлов словаря.
const (
	WordsFile         = "words.dawg"
	PredictionFile    = "prediction-suffixes-%d.dawg"
	ProbabilitiesFile = "p_t_given_w.intdawg"
	ParadigmsFile     = "paradigms.array"
	TagsIntFile       = "gramtab-opencorpora-int.json"
	TagsExtFile       = "gramtab-opencorpora-ext.json"
	SuffixesFile      = "suffixes.json"
)

// DefaultDictDir возвращает путь к словарю: переменная окружения AZMORPH_DICT_PATH,
// иначе каталог dicts рядом с пакетом.
func DefaultDictDir() (string, error) {
	if dir := os.Getenv(config.EnvDictPath); dir != "" {
		return dir, nil
	}
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("не удалось определить путь к пакету analyzer")
	}
	return filepath.Join(filepath.Dir(currentFilePath), "dicts"), nil
}

// LoadDictionary загружает словарь из каталога dir (пустая строка - каталог
// по умолчанию). Файлы, разрезанные на части name_aa, name_ab, ..., сначала
// склеиваются. Автоматы предсказания и вероятностей необязательны.
func LoadDictionary(dir string) (*Dictionary, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDictDir(); err != nil {
			return nil, err
		}
	}
	log.Debug().Str("dir", dir).Msg("Загрузка словаря")

	l := &loader{dir: dir}
	dict, err := l.load()
	if err != nil {
		l.release()
		return nil, err
	}
	dict.mappings = l.mappings

	log.Info().
		Str("dir", dir).
		Int("units", dict.words.Len()).
		Int("paradigms", len(dict.paradigms)).
		Int("tags", len(dict.tags)).
		Msg("Словарь загружен")
	return dict, nil
}

type loader struct {
	dir      string
	mappings []mmap.MMap
}

func (l *loader) load() (*Dictionary, error) {
	var data DictionaryData
	var err error

	// 1. Автомат словоформ обязателен.
	if data.Words, err = l.dawg(WordsFile, dawg.FormatWords, true); err != nil {
		return nil, err
	}

	// 2. Автоматы предсказания, по одному на префикс парадигмы.
	data.Predictions = make([]*dawg.DAWG, len(paradigmPrefixes))
	for i := range data.Predictions {
		if data.Predictions[i], err = l.dawg(fmt.Sprintf(PredictionFile, i), dawg.FormatProbs, false); err != nil {
			return nil, err
		}
	}
	if data.Probabilities, err = l.dawg(ProbabilitiesFile, dawg.FormatInt, false); err != nil {
		return nil, err
	}

	// 3. Таблица парадигм.
	raw, err := l.read(ParadigmsFile)
	if err != nil {
		return nil, err
	}
	if data.Paradigms, err = ParseParadigms(raw); err != nil {
		return nil, fmt.Errorf("ошибка загрузки %s: %w", ParadigmsFile, err)
	}

	// 4. JSON-таблицы читаются целиком.
	suffixes, err := l.read(SuffixesFile)
	if err != nil {
		return nil, err
	}
	if data.Suffixes, err = ParseSuffixes(suffixes); err != nil {
		return nil, err
	}
	tagsInt, err := l.read(TagsIntFile)
	if err != nil {
		return nil, err
	}
	tagsExt, err := l.read(TagsExtFile)
	if err != nil {
		return nil, err
	}
	if data.Tags, err = ParseTagTable(tagsInt, tagsExt); err != nil {
		return nil, err
	}

	return NewDictionary(data)
}

func (l *loader) dawg(name string, format dawg.Format, required bool) (*dawg.DAWG, error) {
	raw, err := l.mmap(name, required)
	if err != nil || raw == nil {
		return nil, err
	}
	d, err := dawg.FromBytes(raw, format)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки %s: %w", name, err)
	}
	return d, nil
}

// mmap отображает файл в память. Для необязательного отсутствующего файла
// возвращает nil без ошибки.
func (l *loader) mmap(name string, required bool) ([]byte, error) {
	path, err := l.locate(name, required)
	if err != nil || path == "" {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения атрибутов %s: %w", path, err)
	}
	if info.Size() == 0 {
		// Пустой файл нельзя отобразить; FromBytes сообщит о повреждении.
		return []byte{}, nil
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("ошибка mmap.Map %s: %w", path, err)
	}
	l.mappings = append(l.mappings, m)
	return m, nil
}

func (l *loader) read(name string) ([]byte, error) {
	path, err := l.locate(name, true)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return data, nil
}

// locate возвращает путь к файлу, при необходимости склеивая его из частей.
func (l *loader) locate(name string, required bool) (string, error) {
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("ошибка доступа к %s: %w", path, err)
	}

	err := mergeFilesWithPrefix(l.dir, name+"_", path)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, errNoParts) && !required:
		log.Debug().Str("file", name).Msg("Необязательный файл словаря отсутствует")
		return "", nil
	case errors.Is(err, errNoParts):
		return "", fmt.Errorf(
			"файл словаря '%s' или его части не найдены. "+
				"Убедитесь, что файлы '%s_aa', '%s_ab', ... присутствуют, "+
				"либо установите переменную окружения %s: %w",
			path, name, name, config.EnvDictPath, ErrNotInitialized,
		)
	}
	return "", fmt.Errorf("ошибка при объединении частей словаря: %w", err)
}

func (l *loader) release() {
	for _, m := range l.mappings {
		_ = m.Unmap()
	}
	l.mappings = nil
}

var errNoParts = errors.New("не найдено частей файла")

// mergeFilesWithPrefix объединяет файлы с заданным префиксом в один файл.
// sourceDir - директория, где находятся части.
// prefix - префикс имен файлов частей (например, "words.dawg_").
// outputPath - путь к файлу, куда будут записаны объединенные данные.
func mergeFilesWithPrefix(sourceDir, prefix, outputPath string) error {
	// 1. Найти все файлы, начинающиеся с префикса.
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: каталог %s не существует", errNoParts, sourceDir)
		}
		return fmt.Errorf("ошибка при поиске файлов: %w", err)
	}
	var partFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			partFiles = append(partFiles, filepath.Join(sourceDir, e.Name()))
		}
	}
	if len(partFiles) == 0 {
		return fmt.Errorf("%w: префикс '%s' в директории '%s'", errNoParts, prefix, sourceDir)
	}

	// 2. Сортировать по имени: split создает суффиксы aa, ab, ac, ...
	sort.Strings(partFiles)
	names := make([]string, len(partFiles))
	for i, part := range partFiles {
		names[i] = filepath.Base(part)
	}
	log.Info().Strs("parts", names).Str("output", outputPath).Msg("Объединение частей словаря")

	// 3. Пишем во временный файл и переименовываем, чтобы при сбое
	// не оставить обрезанный словарь.
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), filepath.Base(outputPath)+".tmp*")
	if err != nil {
		return fmt.Errorf("ошибка создания выходного файла %s: %w", outputPath, err)
	}
	defer os.Remove(tmp.Name())

	// 4. Скопировать содержимое каждой части.
	for _, partPath := range partFiles {
		inFile, err := os.Open(partPath)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("ошибка открытия части файла %s: %w", partPath, err)
		}
		_, err = io.Copy(tmp, inFile)
		inFile.Close()
		if err != nil {
			tmp.Close()
			return fmt.Errorf("ошибка копирования данных из %s в %s: %w", partPath, outputPath, err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", outputPath, err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return fmt.Errorf("ошибка переименования в %s: %w", outputPath, err)
	}
	return nil
}

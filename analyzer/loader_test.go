package analyzer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/steosofficial/azmorph/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	writeTestDictionary(t, dir)

	dict, err := LoadDictionary(dir)
	require.NoError(t, err)
	assert.Len(t, dict.mappings, 3, "words, prediction-0, вероятности")
	assert.Nil(t, dict.prediction(1), "необязательный автомат отсутствует")

	matches, err := dict.Lookup("планета", nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	prob, ok := dict.Probability("планеты", NewTag("NOUN,inan,femn sing,gent"))
	require.True(t, ok)
	assert.InDelta(t, 0.3, prob, 1e-9)

	require.NoError(t, dict.Close())
	assert.Nil(t, dict.mappings)
	_, err = dict.Lookup("планета", nil, 0, 0)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLoadDictionary_MergesParts(t *testing.T) {
	dir := t.TempDir()
	writeTestDictionary(t, dir)

	// Разрезаем автомат словоформ на две части, как это делает split.
	path := filepath.Join(dir, WordsFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	half := len(data) / 2
	require.NoError(t, os.WriteFile(path+"_aa", data[:half], 0o644))
	require.NoError(t, os.WriteFile(path+"_ab", data[half:], 0o644))
	require.NoError(t, os.Remove(path))

	dict, err := LoadDictionary(dir)
	require.NoError(t, err)
	defer dict.Close()

	merged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, merged)

	matches, err := dict.Lookup("ёлку", nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestLoadDictionary_Errors(t *testing.T) {
	t.Run("пустой каталог", func(t *testing.T) {
		_, err := LoadDictionary(t.TempDir())
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("нет каталога", func(t *testing.T) {
		_, err := LoadDictionary(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("нет таблицы тегов", func(t *testing.T) {
		dir := t.TempDir()
		writeTestDictionary(t, dir)
		require.NoError(t, os.Remove(filepath.Join(dir, TagsExtFile)))
		_, err := LoadDictionary(dir)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("обрезанные парадигмы", func(t *testing.T) {
		dir := t.TempDir()
		writeTestDictionary(t, dir)
		path := filepath.Join(dir, ParadigmsFile)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data[:len(data)-1], 0o644))
		_, err = LoadDictionary(dir)
		assert.ErrorIs(t, err, ErrMalformedParadigms)
	})

	t.Run("пустой автомат", func(t *testing.T) {
		dir := t.TempDir()
		writeTestDictionary(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, WordsFile), nil, 0o644))
		_, err := LoadDictionary(dir)
		assert.Error(t, err)
	})
}

func TestLoadDictionary_EnvDir(t *testing.T) {
	dir := t.TempDir()
	writeTestDictionary(t, dir)
	t.Setenv(config.EnvDictPath, dir)

	got, err := DefaultDictDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	dict, err := LoadDictionary("")
	require.NoError(t, err)
	assert.NoError(t, dict.Close())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestDictionary(t, dir)

	cfg := config.NewConfig()
	cfg.DictPath = dir
	a, err := Load(cfg)
	require.NoError(t, err)
	defer a.Close()

	parses, err := a.Analyze("планету")
	require.NoError(t, err)
	require.Len(t, parses, 1)
	assert.True(t, parses[0].Tag().Has(Accs))

	// Изменения исходных настроек не влияют на анализатор.
	cfg.IgnoreCase = true
	assert.False(t, a.Config().IgnoreCase)

	cfg.DictPath = filepath.Join(dir, "missing")
	_, err = Load(cfg)
	assert.Error(t, err)
}

// Разборы, полученные до Close, остаются рабочими: таблица парадигм
// хранится в куче, а не в отображенном файле.
func TestLoad_ParsesOutliveClose(t *testing.T) {
	dir := t.TempDir()
	writeTestDictionary(t, dir)

	cfg := config.NewConfig()
	cfg.DictPath = dir
	a, err := Load(cfg)
	require.NoError(t, err)

	parses, err := a.Analyze("планета")
	require.NoError(t, err)
	require.NotEmpty(t, parses)
	p := parses[0]
	require.NoError(t, a.Close())

	form, ok := p.Inflect(FormIndex(1))
	require.True(t, ok)
	assert.Equal(t, "планеты", form.Word())
	assert.Equal(t, 6, p.FormCount())
	assert.Len(t, p.Forms(), 6)
	assert.Equal(t, "суперпланета", p.derived("супер", "", 1).String())

	_, err = a.Analyze("планета")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = a.AnalyzeList([]string{"планета"})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

// Close во время разбора не роняет процесс: каждый вызов либо находит
// разборы, либо сообщает ErrNotInitialized.
func TestLoad_CloseDuringAnalyze(t *testing.T) {
	dir := t.TempDir()
	writeTestDictionary(t, dir)

	cfg := config.NewConfig()
	cfg.DictPath = dir
	cfg.CacheSize = 0
	a, err := Load(cfg)
	require.NoError(t, err)

	words := []string{"планета", "ёлки", "комета", "по-красному", "суперпланета", "плааанета"}
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 8*200)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			for i := 0; i < 200; i++ {
				if _, err := a.Analyze(words[(w+i)%len(words)]); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	close(start)
	require.NoError(t, a.Close())
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, ErrNotInitialized)
	}
}

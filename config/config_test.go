package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/steosofficial/azmorph/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "azmorph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	c := config.NewConfig()
	c.Validate()

	assert.False(t, c.IgnoreCase)
	assert.Equal(t, map[rune]rune{'е': 'ё'}, c.ReplacementRunes())
	assert.Equal(t, config.Unlimited, c.Stutter)
	assert.Equal(t, config.Budget(0), c.Typos)
	assert.Equal(t, []int{4, 9}, c.AutoTypos)
	assert.Equal(t, config.DefaultParsers, c.Parsers)
	assert.True(t, c.NormalizeScore)
	assert.Equal(t, config.DefaultCacheSize, c.CacheSize)
}

func TestLoad(t *testing.T) {
	t.Setenv(config.EnvDictPath, "")
	path := writeConfig(t, `
ignoreCase: true
typos: auto
stutter: 2
replacements:
  ё: е
parsers: ["Dictionary?", "IntNumber"]
forceParse: true
dictPath: /opt/dicts
`)

	c, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, c.IgnoreCase)
	assert.True(t, c.Typos.IsAuto())
	assert.Equal(t, config.Budget(2), c.Stutter)
	assert.Equal(t, map[string]string{"ё": "е"}, c.Replacements)
	assert.True(t, c.ForceParse)
	assert.True(t, c.NormalizeScore, "значение по умолчанию сохраняется")
	assert.Equal(t, "/opt/dicts", c.DictPath)
	assert.Equal(t, []config.ParserStep{
		{Name: "Dictionary", Terminal: false},
		{Name: "IntNumber", Terminal: true},
	}, c.Steps())
}

func TestLoad_EnvOverridesDictPath(t *testing.T) {
	t.Setenv(config.EnvDictPath, "/env/dicts")
	path := writeConfig(t, "dictPath: /opt/dicts\n")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/dicts", c.DictPath)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "нет-такого.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "typos: много\n"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "typos: -1\n"))
	assert.ErrorIs(t, err, config.ErrNegativeBudget)

	_, err = config.Load(writeConfig(t, "stutter: -3\n"))
	assert.ErrorIs(t, err, config.ErrNegativeBudget)
}

func TestBudget_YAMLRejectsNegative(t *testing.T) {
	for _, in := range []string{"-1", "-2"} {
		t.Run(in, func(t *testing.T) {
			var b config.Budget
			err := yaml.Unmarshal([]byte(in), &b)
			assert.ErrorIs(t, err, config.ErrNegativeBudget)
			assert.Equal(t, config.Budget(0), b)
		})
	}
}

func TestValidate_Repairs(t *testing.T) {
	c := config.NewConfig()
	c.Stutter = -5
	c.Typos = -7
	c.AutoTypos = nil
	c.Parsers = nil
	c.CacheSize = -1
	c.Replacements = map[string]string{"е": "ё", "ab": "c"}

	c.Validate()

	assert.Equal(t, config.Unlimited, c.Stutter)
	assert.Equal(t, config.Budget(0), c.Typos)
	assert.Equal(t, config.DefaultAutoTypos, c.AutoTypos)
	assert.Equal(t, config.DefaultParsers, c.Parsers)
	assert.Equal(t, config.DefaultCacheSize, c.CacheSize)
	assert.Equal(t, map[string]string{"е": "ё"}, c.Replacements)
}

func TestBudget_YAML(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want config.Budget
	}{
		{"число", "3", 3},
		{"auto", "auto", config.Auto},
		{"без ограничения", "unlimited", config.Unlimited},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var b config.Budget
			require.NoError(t, yaml.Unmarshal([]byte(tc.in), &b))
			assert.Equal(t, tc.want, b)

			out, err := yaml.Marshal(b)
			require.NoError(t, err)
			assert.Equal(t, tc.in+"\n", string(out))
		})
	}
}

func TestBudget_Limit(t *testing.T) {
	assert.Equal(t, 2, config.Auto.Limit([]int{4, 9}))
	assert.Equal(t, 1, config.Budget(1).Limit([]int{4, 9}))
}

func TestClone(t *testing.T) {
	c := config.NewConfig()
	d := c.Clone()
	d.Replacements["а"] = "о"
	d.Parsers[0] = "Abbr"

	assert.NotContains(t, c.Replacements, "а")
	assert.Equal(t, "Dictionary?", c.Parsers[0])
}

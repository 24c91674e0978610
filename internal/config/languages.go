package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Language tells the reader how to treat input written in one language:
// which tree-sitter grammar decides whether it is complete and which extra
// characters count as word constituents.
type Language struct {
	Name      string   `toml:"name"`
	Grammar   string   `toml:"grammar"`
	WordChars string   `toml:"word-chars"`
	Aliases   []string `toml:"aliases"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

func (l Languages) Match(name string) *Language {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	for i := range l.Languages {
		lang := &l.Languages[i]
		if strings.ToLower(lang.Name) == name {
			return lang
		}
		for _, alias := range lang.Aliases {
			if strings.ToLower(alias) == name {
				return lang
			}
		}
	}
	return nil
}

func DefaultLanguages() Languages {
	return Languages{
		Languages: []Language{
			{Name: "bash", Grammar: "bash", WordChars: "_", Aliases: []string{"sh", "shell"}},
			{Name: "python", Grammar: "python", WordChars: "._", Aliases: []string{"py"}},
			{Name: "go", Grammar: "go", WordChars: "_", Aliases: []string{"golang"}},
			{Name: "toml", Grammar: "toml", WordChars: "_-"},
			{Name: "yaml", Grammar: "yaml", WordChars: "_-", Aliases: []string{"yml"}},
		},
	}
}

// LoadLanguages returns the built-in languages with languages.toml entries
// layered on top; an entry with a known name replaces the built-in one.
func LoadLanguages() (Languages, error) {
	langs := DefaultLanguages()
	path, err := LanguagesPath()
	if err != nil {
		return langs, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return langs, nil
		}
		return langs, err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return langs, err
	}
	for _, user := range cfg.Languages {
		replaced := false
		for i := range langs.Languages {
			if strings.EqualFold(langs.Languages[i].Name, user.Name) {
				langs.Languages[i] = user
				replaced = true
				break
			}
		}
		if !replaced {
			langs.Languages = append(langs.Languages, user)
		}
	}
	return langs, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}

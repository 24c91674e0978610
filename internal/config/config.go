package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type ReaderOptions struct {
	Encoding           string `toml:"encoding"`
	WordChars          string `toml:"word-chars"`
	KillRingSize       int    `toml:"kill-ring-size"`
	HistorySize        int    `toml:"history-size"`
	HistoryFile        string `toml:"history-file"`
	Language           string `toml:"language"`
	Prompt             string `toml:"prompt"`
	ContinuationPrompt string `toml:"continuation-prompt"`
}

type Config struct {
	Reader ReaderOptions `toml:"reader"`
	// Keymap binds key specs ("ctrl+a", "alt+b", "ctrl+x ctrl+u") to command names.
	Keymap map[string]string `toml:"keymap"`
	// Keys adds raw sequences for logical key names on top of terminfo.
	Keys map[string]string `toml:"keys"`
}

func Default() Config {
	return Config{
		Reader: ReaderOptions{
			Encoding:           "utf-8",
			WordChars:          "",
			KillRingSize:       60,
			HistorySize:        1000,
			HistoryFile:        "",
			Language:           "bash",
			Prompt:             ">>> ",
			ContinuationPrompt: "... ",
		},
		Keymap: map[string]string{
			"ctrl+a":        "beginning-of-line",
			"ctrl+b":        "left",
			"ctrl+c":        "interrupt",
			"ctrl+d":        "delete",
			"ctrl+e":        "end-of-line",
			"ctrl+f":        "right",
			"ctrl+h":        "backspace",
			"ctrl+?":        "backspace",
			"ctrl+j":        "accept",
			"enter":         "maybe-accept",
			"ctrl+k":        "kill-line",
			"ctrl+l":        "clear-screen",
			"ctrl+n":        "next-history",
			"ctrl+p":        "previous-history",
			"ctrl+q":        "quoted-insert",
			"ctrl+t":        "transpose-characters",
			"ctrl+u":        "unix-line-discard",
			"ctrl+v":        "quoted-insert",
			"ctrl+w":        "unix-word-rubout",
			"ctrl+y":        "yank",
			"ctrl+z":        "suspend",
			"ctrl+r":        "repaint",
			"alt+b":         "backward-word",
			"alt+d":         "kill-word",
			"alt+f":         "forward-word",
			"alt+y":         "yank-pop",
			"alt+-":         "digit-arg",
			"alt+0":         "digit-arg",
			"alt+1":         "digit-arg",
			"alt+2":         "digit-arg",
			"alt+3":         "digit-arg",
			"alt+4":         "digit-arg",
			"alt+5":         "digit-arg",
			"alt+6":         "digit-arg",
			"alt+7":         "digit-arg",
			"alt+8":         "digit-arg",
			"alt+9":         "digit-arg",
			"alt+<":         "beginning-of-history",
			"alt+>":         "end-of-history",
			"alt+enter":     "insert-nl",
			"alt+backspace": "backward-kill-word",
			"alt+ctrl+?":    "backward-kill-word",
			"backspace":     "backspace",
			"del":           "delete",
			"home":          "beginning-of-line",
			"end":           "end-of-line",
			"up":            "up",
			"down":          "down",
			"left":          "left",
			"right":         "right",
			"f1":            "help",
			"tab":           "self-insert",
		},
		Keys: map[string]string{},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	if userCfg.Reader.Encoding != "" {
		cfg.Reader.Encoding = userCfg.Reader.Encoding
	}
	if userCfg.Reader.WordChars != "" {
		cfg.Reader.WordChars = userCfg.Reader.WordChars
	}
	if userCfg.Reader.KillRingSize > 0 {
		cfg.Reader.KillRingSize = userCfg.Reader.KillRingSize
	}
	if userCfg.Reader.HistorySize > 0 {
		cfg.Reader.HistorySize = userCfg.Reader.HistorySize
	}
	if userCfg.Reader.HistoryFile != "" {
		cfg.Reader.HistoryFile = userCfg.Reader.HistoryFile
	}
	if userCfg.Reader.Language != "" {
		cfg.Reader.Language = userCfg.Reader.Language
	}
	if userCfg.Reader.Prompt != "" {
		cfg.Reader.Prompt = userCfg.Reader.Prompt
	}
	if userCfg.Reader.ContinuationPrompt != "" {
		cfg.Reader.ContinuationPrompt = userCfg.Reader.ContinuationPrompt
	}
	for k, v := range userCfg.Keymap {
		cfg.Keymap[k] = v
	}
	for k, v := range userCfg.Keys {
		cfg.Keys[k] = v
	}

	return cfg, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QLINE_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qline"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qline"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Package langs maps user-supplied language names and codes onto the
// English language names used in translation prompts.
package langs

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/agentran/internal/failure"
)

type Language struct {
	Name string
	Tag  language.Tag
}

// Code is the two-letter ISO 639-1 code (three letters when none exists).
func (l Language) Code() string {
	base, _ := l.Tag.Base()
	return base.String()
}

func (l Language) String() string { return l.Name }

// Supported is the list offered in the language pickers.
var Supported = []Language{
	{"English", language.English},
	{"Spanish", language.Spanish},
	{"French", language.French},
	{"German", language.German},
	{"Italian", language.Italian},
	{"Portuguese", language.Portuguese},
	{"Russian", language.Russian},
	{"Chinese (Simplified)", language.SimplifiedChinese},
	{"Chinese (Traditional)", language.TraditionalChinese},
	{"Japanese", language.Japanese},
	{"Korean", language.Korean},
	{"Arabic", language.Arabic},
	{"Hindi", language.Hindi},
	{"Dutch", language.Dutch},
	{"Swedish", language.Swedish},
	{"Polish", language.Polish},
	{"Turkish", language.Turkish},
	{"Vietnamese", language.Vietnamese},
	{"Thai", language.Thai},
	{"Indonesian", language.Indonesian},
	{"Greek", language.Greek},
}

// Normalize accepts an English language name ("german", "Chinese
// (Simplified)") or a BCP 47 code ("de", "zh-Hant", "pt-BR") and returns
// the canonical Language. Entries of Supported win; any other language
// known to x/text is accepted under its English display name.
func Normalize(input string) (Language, error) {
	in := strings.TrimSpace(input)
	if in == "" {
		return Language{}, failure.Newf(failure.Configuration, "language", "language must not be empty")
	}

	for _, l := range Supported {
		if strings.EqualFold(l.Name, in) {
			return l, nil
		}
	}

	if tag, err := language.Parse(in); err == nil {
		return fromTag(tag), nil
	}

	names := display.English.Languages()
	for _, tag := range display.Supported.Tags() {
		if strings.EqualFold(names.Name(tag), in) {
			return fromTag(tag), nil
		}
	}

	return Language{}, failure.New(failure.Configuration, "language", fmt.Errorf("unknown language %q", input))
}

func fromTag(tag language.Tag) Language {
	for _, l := range Supported {
		if l.Tag == tag {
			return l
		}
	}

	base, _ := tag.Base()
	script, _ := tag.Script()
	for _, l := range Supported {
		lb, _ := l.Tag.Base()
		ls, _ := l.Tag.Script()
		// the likely script separates "zh-TW" from "zh" and "zh-CN"
		if lb == base && ls == script {
			return l
		}
	}

	return Language{Name: display.English.Tags().Name(tag), Tag: tag}
}

// Names returns the names of Supported in order.
func Names() []string {
	out := make([]string, len(Supported))
	for i, l := range Supported {
		out[i] = l.Name
	}
	return out
}

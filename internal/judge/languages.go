package judge

import (
	"fmt"
	"sort"

	"contest_judge/internal/domain/model"
)

var languageIDs = map[model.Language]int{
	model.LangC:          50,
	model.LangCPP:        54,
	model.LangCSharp:     51,
	model.LangGo:         60,
	model.LangJava:       62,
	model.LangJavaScript: 63,
	model.LangKotlin:     78,
	model.LangPython:     71,
	model.LangPython2:    70,
	model.LangPython3:    71,
	model.LangRust:       73,
	model.LangTypeScript: 74,
	model.LangPHP:        68,
	model.LangRuby:       72,
	model.LangBash:       46,
}

// LanguageID resolves a language name to its Judge0 id.
func LanguageID(lang model.Language) (int, error) {
	id, ok := languageIDs[lang]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return id, nil
}

// KnownLanguageID reports whether id belongs to any supported language.
func KnownLanguageID(id int) bool {
	for _, v := range languageIDs {
		if v == id {
			return true
		}
	}
	return false
}

func SupportedLanguages() []model.Language {
	langs := make([]model.Language, 0, len(languageIDs))
	for l := range languageIDs {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

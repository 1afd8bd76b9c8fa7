package search

import (
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/ar"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/lang/da"
	"github.com/blevesearch/bleve/v2/analysis/lang/de"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/analysis/lang/fa"
	"github.com/blevesearch/bleve/v2/analysis/lang/fi"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/analysis/lang/hu"
	"github.com/blevesearch/bleve/v2/analysis/lang/it"
	"github.com/blevesearch/bleve/v2/analysis/lang/nl"
	"github.com/blevesearch/bleve/v2/analysis/lang/pt"
	"github.com/blevesearch/bleve/v2/analysis/lang/ro"
	"github.com/blevesearch/bleve/v2/analysis/lang/ru"
	"github.com/blevesearch/bleve/v2/analysis/lang/sv"
	"github.com/blevesearch/bleve/v2/analysis/lang/tr"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// FallbackAnalyzer is used for languages without a dedicated stemmer:
// unicode segmentation plus lowercasing, no stop words.
const FallbackAnalyzer = "fp_fallback"

// languageAnalyzers maps ISO 639-1 codes to built-in bleve analyzers.
var languageAnalyzers = map[string]string{
	"ar": ar.AnalyzerName,
	"da": da.AnalyzerName,
	"de": de.AnalyzerName,
	"en": en.AnalyzerName,
	"es": es.AnalyzerName,
	"fa": fa.AnalyzerName,
	"fi": fi.AnalyzerName,
	"fr": fr.AnalyzerName,
	"hu": hu.AnalyzerName,
	"it": it.AnalyzerName,
	"nl": nl.AnalyzerName,
	"pt": pt.AnalyzerName,
	"ro": ro.AnalyzerName,
	"ru": ru.AnalyzerName,
	"sv": sv.AnalyzerName,
	"tr": tr.AnalyzerName,
	"zh": cjk.AnalyzerName,
	"ja": cjk.AnalyzerName,
	"ko": cjk.AnalyzerName,
}

// AnalyzerForCode resolves the analyzer for a language code. Unknown
// codes get the fallback so that every language remains searchable.
func AnalyzerForCode(code string) string {
	if name, ok := languageAnalyzers[code]; ok {
		return name
	}
	return FallbackAnalyzer
}

// registerFallback adds the fallback analyzer to an index mapping. It
// must be called before the mapping is used to create an index.
func registerFallback(m *mapping.IndexMappingImpl) error {
	return m.AddCustomAnalyzer(FallbackAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []any{lowercase.Name},
	})
}

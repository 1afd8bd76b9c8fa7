package search

import (
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/footprintsforfreedom/footprints-server/internal/errors"
)

// Document field names. These are the wire contract of the index; query
// code and reindex tooling address stored fields by these names.
const (
	FieldType     = "type"
	FieldEntityID = "entityId"

	FieldLanguageID       = "languageId"
	FieldLanguageCode     = "languageCode"
	FieldLanguageName     = "languageName"
	FieldLanguageIsRTL    = "languageIsRTL"
	FieldLanguagePriority = "languagePriority"

	FieldDetailID         = "detailId"
	FieldTitle            = "title"
	FieldText             = "text"
	FieldSource           = "source"
	FieldSlug             = "slug"
	FieldDetailUserID     = "detailUserId"
	FieldDetailVerifiedAt = "detailVerifiedAt"
	FieldDetailCreatedAt  = "detailCreatedAt"
	FieldDetailUpdatedAt  = "detailUpdatedAt"

	FieldLocation           = "location"
	FieldLocationLat        = "locationLat"
	FieldLocationLon        = "locationLon"
	FieldLocationID         = "locationId"
	FieldLocationUserID     = "locationUserId"
	FieldLocationVerifiedAt = "locationVerifiedAt"

	FieldTags = "tags"

	FieldFileID         = "fileId"
	FieldFilePath       = "filePath"
	FieldFileType       = "fileType"
	FieldFileUserID     = "fileUserId"
	FieldFileVerifiedAt = "fileVerifiedAt"
)

var baseNames = map[DocType]string{
	DocTypeWaypoint: "waypoints",
	DocTypeTag:      "tags",
	DocTypeMedia:    "media",
	DocTypePage:     "pages",
}

// BaseName is the index family prefix for a document type.
func BaseName(dt DocType) string {
	return baseNames[dt]
}

// IndexName resolves the physical index name for a family and language.
// Shared families ignore the language.
func IndexName(dt DocType, langCode string) string {
	if StrategyFor(dt) == SharedIndex {
		return BaseName(dt)
	}
	return BaseName(dt) + "_" + langCode
}

// WildcardName matches every index of a family, for cross-language
// reads via the alias.
func WildcardName(dt DocType) string {
	if StrategyFor(dt) == SharedIndex {
		return BaseName(dt)
	}
	return BaseName(dt) + "_*"
}

func newKeywordField() *mapping.FieldMapping {
	fm := mapping.NewTextFieldMapping()
	fm.Analyzer = keyword.Name
	fm.Store = true
	return fm
}

func newLangTextField(analyzer string) *mapping.FieldMapping {
	fm := mapping.NewTextFieldMapping()
	fm.Analyzer = analyzer
	fm.Store = true
	return fm
}

func newNumericField() *mapping.FieldMapping {
	fm := mapping.NewNumericFieldMapping()
	fm.Store = true
	return fm
}

func newBooleanField() *mapping.FieldMapping {
	fm := mapping.NewBooleanFieldMapping()
	fm.Store = true
	return fm
}

// docMapping builds the document mapping for one family with the given
// text analyzer. All non-text fields are keyword or numeric so that
// exact lookups by id, slug and tag work without analysis surprises.
func docMapping(dt DocType, analyzer string) *mapping.DocumentMapping {
	dm := mapping.NewDocumentMapping()

	for _, f := range []string{
		FieldType, FieldEntityID, FieldLanguageID, FieldLanguageCode,
		FieldLanguageName, FieldDetailID, FieldSlug, FieldDetailUserID,
		FieldDetailVerifiedAt, FieldDetailCreatedAt, FieldDetailUpdatedAt,
	} {
		dm.AddFieldMappingsAt(f, newKeywordField())
	}
	dm.AddFieldMappingsAt(FieldLanguageIsRTL, newBooleanField())
	dm.AddFieldMappingsAt(FieldLanguagePriority, newNumericField())
	dm.AddFieldMappingsAt(FieldTitle, newLangTextField(analyzer))

	switch dt {
	case DocTypeWaypoint:
		dm.AddFieldMappingsAt(FieldText, newLangTextField(analyzer))
		dm.AddFieldMappingsAt(FieldSource, newLangTextField(analyzer))
		// The geo point is indexed for bounding-box queries; the
		// coordinates are read back from the plain numeric fields.
		geo := mapping.NewGeoPointFieldMapping()
		geo.Store = false
		dm.AddFieldMappingsAt(FieldLocation, geo)
		dm.AddFieldMappingsAt(FieldLocationLat, newNumericField())
		dm.AddFieldMappingsAt(FieldLocationLon, newNumericField())
		for _, f := range []string{FieldLocationID, FieldLocationUserID, FieldLocationVerifiedAt, FieldTags} {
			dm.AddFieldMappingsAt(f, newKeywordField())
		}
	case DocTypeMedia:
		dm.AddFieldMappingsAt(FieldText, newLangTextField(analyzer))
		dm.AddFieldMappingsAt(FieldSource, newLangTextField(analyzer))
		for _, f := range []string{FieldFileID, FieldFilePath, FieldFileType, FieldFileUserID, FieldFileVerifiedAt} {
			dm.AddFieldMappingsAt(f, newKeywordField())
		}
	case DocTypePage:
		dm.AddFieldMappingsAt(FieldText, newLangTextField(analyzer))
	}

	return dm
}

// NewPerLanguageMapping builds the mapping for one language's index in
// a per-language family.
func NewPerLanguageMapping(dt DocType, langCode string) (mapping.IndexMapping, error) {
	if StrategyFor(dt) != PerLanguageIndex {
		return nil, errors.Internalf("per-language mapping requested for shared family %s", dt)
	}
	m := mapping.NewIndexMapping()
	if err := registerFallback(m); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "register fallback analyzer")
	}
	analyzer := AnalyzerForCode(langCode)
	m.DefaultAnalyzer = analyzer
	m.DefaultMapping = docMapping(dt, analyzer)
	return m, nil
}

// NewSharedMapping builds the mapping for a shared family. Documents of
// every language live in one index, so the language code field selects
// the per-language document mapping. Codes not registered at creation
// time fall back to the default mapping's plain analyzer.
func NewSharedMapping(dt DocType, langCodes []string) (mapping.IndexMapping, error) {
	if StrategyFor(dt) != SharedIndex {
		return nil, errors.Internalf("shared mapping requested for per-language family %s", dt)
	}
	m := mapping.NewIndexMapping()
	if err := registerFallback(m); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "register fallback analyzer")
	}
	m.TypeField = FieldLanguageCode
	m.DefaultMapping = docMapping(dt, FallbackAnalyzer)
	for _, code := range langCodes {
		m.AddDocumentMapping(code, docMapping(dt, AnalyzerForCode(code)))
	}
	return m, nil
}

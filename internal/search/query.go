package search

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	bsearch "github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/footprintsforfreedom/footprints-server/internal/errors"
)

// maxFetch bounds how many documents a collapsed read pulls from the
// engine before deduplication. Collapse and pagination happen after the
// fetch, so the window must cover the full candidate set: past this
// many documents in one family, totals undercount and collapse can miss
// language versions.
// TODO: switch to a paged scroll (SearchRequest.From) before any family
// approaches this size.
const maxFetch = 10000

// Reader builds and runs the read-side queries: lookups, listings and
// free-text search, all collapsed to one hit per entity.
type Reader struct {
	engine *Engine
	log    *slog.Logger
}

func NewReader(engine *Engine, log *slog.Logger) *Reader {
	return &Reader{
		engine: engine,
		log:    log.With(slog.String("component", "search-reader")),
	}
}

// Hit is one decoded search document, enriched with the set of other
// languages the entity is available in.
type Hit struct {
	EntityID string

	LanguageID       string
	LanguageCode     string
	LanguageName     string
	LanguageIsRTL    bool
	LanguagePriority int

	DetailID         string
	Title            string
	Text             string
	Source           string
	Slug             string
	DetailUserID     *string
	DetailVerifiedAt *time.Time
	DetailCreatedAt  time.Time
	DetailUpdatedAt  time.Time

	HasLocation        bool
	LocationID         string
	Latitude           float64
	Longitude          float64
	LocationUserID     *string
	LocationVerifiedAt *time.Time

	TagIDs []string

	FileID         string
	FilePath       string
	FileType       string
	FileUserID     *string
	FileVerifiedAt *time.Time

	AvailableLanguages []string
	Score              float64
}

// ResultPage is one page of collapsed hits with the distinct entity
// total.
type ResultPage struct {
	Items    []*Hit
	Total    int
	Page     int
	PageSize int
}

// FindByID returns the single best-language document of an entity plus
// the set of language codes the entity is indexed in.
func (r *Reader) FindByID(dt DocType, entityID, preferredCode string) (*Hit, error) {
	q := termQuery(FieldEntityID, entityID)
	hits, err := r.fetch(dt, q, maxFetch)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, errors.NotFoundf("%s %s has no indexed content", dt, entityID)
	}

	groups, err := collapse(hits, true)
	if err != nil {
		return nil, err
	}
	if len(groups) > 1 {
		return nil, errors.InconsistentIndexf("id lookup for %s %s matched %d entities", dt, entityID, len(groups))
	}
	return groups[0].resolve(preferredCode), nil
}

// FindBySlug returns the best-language document matching a slug. Slugs
// are unique per language per entity, not globally, so the match is
// ranked like an id lookup; the available-language set comes from a
// second query on the winning entity's id.
func (r *Reader) FindBySlug(dt DocType, slug, preferredCode string) (*Hit, error) {
	q := termQuery(FieldSlug, slug)
	hits, err := r.fetch(dt, q, maxFetch)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, errors.NotFoundf("no %s with slug %q", dt, slug)
	}

	groups, err := collapse(hits, true)
	if err != nil {
		return nil, err
	}
	sortGroups(groups, preferredCode)
	best := groups[0].resolve(preferredCode)

	full, err := r.FindByID(dt, best.EntityID, preferredCode)
	if err != nil {
		return nil, err
	}
	best.AvailableLanguages = full.AvailableLanguages
	return best, nil
}

// List returns a page of entities ordered by the resolved language's
// rank, then title. tagID, when set, restricts the listing to entities
// carrying that tag.
func (r *Reader) List(dt DocType, preferredCode, tagID string, page, pageSize int) (*ResultPage, error) {
	var q query.Query = query.NewMatchAllQuery()
	if tagID != "" {
		q = termQuery(FieldTags, tagID)
	}

	hits, err := r.fetch(dt, q, maxFetch)
	if err != nil {
		return nil, err
	}
	groups, err := collapse(hits, false)
	if err != nil {
		return nil, err
	}

	items := make([]*Hit, 0, len(groups))
	for _, g := range groups {
		items = append(items, g.resolve(preferredCode))
	}
	sort.Slice(items, func(i, j int) bool {
		ri, rj := rank(items[i], preferredCode), rank(items[j], preferredCode)
		if ri != rj {
			return ri < rj
		}
		ti, tj := strings.ToLower(items[i].Title), strings.ToLower(items[j].Title)
		if ti != tj {
			return ti < tj
		}
		return items[i].EntityID < items[j].EntityID
	})
	return paginate(items, page, pageSize), nil
}

// Search runs free-text search over title, text and source. extraTagIDs
// widens the match: an entity matches on its own text or on carrying
// any of the given tags. Results are collapsed per entity and ordered
// by score.
func (r *Reader) Search(dt DocType, text string, extraTagIDs []string, preferredCode string, page, pageSize int) (*ResultPage, error) {
	if strings.TrimSpace(text) == "" && len(extraTagIDs) == 0 {
		return r.List(dt, preferredCode, "", page, pageSize)
	}

	clauses := make([]query.Query, 0, 4)
	if strings.TrimSpace(text) != "" {
		title := query.NewMatchQuery(text)
		title.SetField(FieldTitle)
		title.SetBoost(3)
		clauses = append(clauses, title)

		body := query.NewMatchQuery(text)
		body.SetField(FieldText)
		clauses = append(clauses, body)

		source := query.NewMatchQuery(text)
		source.SetField(FieldSource)
		clauses = append(clauses, source)
	}
	for _, tagID := range extraTagIDs {
		clauses = append(clauses, termQuery(FieldTags, tagID))
	}

	hits, err := r.fetch(dt, query.NewDisjunctionQuery(clauses), maxFetch)
	if err != nil {
		return nil, err
	}
	groups, err := collapse(hits, false)
	if err != nil {
		return nil, err
	}

	items := make([]*Hit, 0, len(groups))
	for _, g := range groups {
		items = append(items, g.resolve(preferredCode))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].EntityID < items[j].EntityID
	})
	return paginate(items, page, pageSize), nil
}

// MatchingTagIDs returns the ids of tags whose title matches the text.
// Waypoint search merges these into its own query so that an entity is
// found through its tags as well.
func (r *Reader) MatchingTagIDs(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	q := query.NewMatchQuery(text)
	q.SetField(FieldTitle)

	hits, err := r.fetch(DocTypeTag, q, maxFetch)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.EntityID]; ok {
			continue
		}
		seen[h.EntityID] = struct{}{}
		ids = append(ids, h.EntityID)
	}
	return ids, nil
}

// AvailableLanguages returns the distinct language codes an entity is
// indexed in, ordered by language preference.
func (r *Reader) AvailableLanguages(dt DocType, entityID, preferredCode string) ([]string, error) {
	hit, err := r.FindByID(dt, entityID, preferredCode)
	if err != nil {
		return nil, err
	}
	return hit.AvailableLanguages, nil
}

func termQuery(field, term string) *query.TermQuery {
	q := query.NewTermQuery(term)
	q.SetField(field)
	return q
}

// fetch runs a query against a family's alias and decodes the stored
// fields of every hit.
func (r *Reader) fetch(dt DocType, q query.Query, size int) ([]*Hit, error) {
	if r.engine.FamilyIndexCount(dt) == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	req.Fields = []string{"*"}

	res, err := r.engine.Alias(dt).Search(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeEngineUnavailable, "search %s", dt)
	}

	hits := make([]*Hit, 0, len(res.Hits))
	for _, match := range res.Hits {
		h, err := decodeHit(match)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// group is every language version of one entity.
type group struct {
	entityID string
	hits     []*Hit
}

// collapse dedups hits per entity. With strict set, two documents for
// the same (entity, language) pair are reported as index corruption;
// otherwise the higher-scoring one wins and the duplicate is dropped.
func collapse(hits []*Hit, strict bool) ([]*group, error) {
	byEntity := make(map[string]*group)
	order := make([]*group, 0)
	seen := make(map[string]*Hit)

	for _, h := range hits {
		pairKey := h.EntityID + "\x00" + h.LanguageID
		if prev, ok := seen[pairKey]; ok {
			if strict {
				return nil, errors.InconsistentIndexf(
					"entity %s has duplicate documents for language %s", h.EntityID, h.LanguageID)
			}
			if h.Score <= prev.Score {
				continue
			}
			g := byEntity[h.EntityID]
			for i, existing := range g.hits {
				if existing == prev {
					g.hits[i] = h
					break
				}
			}
			seen[pairKey] = h
			continue
		}
		seen[pairKey] = h

		g, ok := byEntity[h.EntityID]
		if !ok {
			g = &group{entityID: h.EntityID}
			byEntity[h.EntityID] = g
			order = append(order, g)
		}
		g.hits = append(g.hits, h)
	}
	return order, nil
}

// rank orders language versions: the caller's preferred language wins
// outright, everything else follows ascending language priority.
func rank(h *Hit, preferredCode string) int {
	if preferredCode != "" && h.LanguageCode == preferredCode {
		return -1
	}
	return h.LanguagePriority
}

// resolve picks the group's best language version and fills in the
// available-language set.
func (g *group) resolve(preferredCode string) *Hit {
	best := g.hits[0]
	for _, h := range g.hits[1:] {
		ri, rb := rank(h, preferredCode), rank(best, preferredCode)
		if ri < rb || (ri == rb && h.LanguageCode < best.LanguageCode) {
			best = h
		}
	}

	codes := make([]string, 0, len(g.hits))
	for _, h := range g.hits {
		codes = append(codes, h.LanguageCode)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	best.AvailableLanguages = codes
	return best
}

func sortGroups(groups []*group, preferredCode string) {
	sort.SliceStable(groups, func(i, j int) bool {
		bi := groups[i].resolve(preferredCode)
		bj := groups[j].resolve(preferredCode)
		ri, rj := rank(bi, preferredCode), rank(bj, preferredCode)
		if ri != rj {
			return ri < rj
		}
		return bi.EntityID < bj.EntityID
	})
}

func paginate(items []*Hit, page, pageSize int) *ResultPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	total := len(items)
	from := (page - 1) * pageSize
	if from > total {
		from = total
	}
	to := from + pageSize
	if to > total {
		to = total
	}
	return &ResultPage{
		Items:    items[from:to],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// decodeHit converts a bleve document match's stored fields back into a
// typed hit. Multi-valued fields come back as slices, single values as
// scalars; both shapes are handled.
func decodeHit(match *bsearch.DocumentMatch) (*Hit, error) {
	f := match.Fields
	h := &Hit{
		EntityID:     fieldString(f, FieldEntityID),
		LanguageID:   fieldString(f, FieldLanguageID),
		LanguageCode: fieldString(f, FieldLanguageCode),
		LanguageName: fieldString(f, FieldLanguageName),
		DetailID:     fieldString(f, FieldDetailID),
		Title:        fieldString(f, FieldTitle),
		Text:         fieldString(f, FieldText),
		Source:       fieldString(f, FieldSource),
		Slug:         fieldString(f, FieldSlug),
		DetailUserID: fieldStringPtr(f, FieldDetailUserID),
		LocationID:   fieldString(f, FieldLocationID),
		FileID:       fieldString(f, FieldFileID),
		FilePath:     fieldString(f, FieldFilePath),
		FileType:     fieldString(f, FieldFileType),
		FileUserID:   fieldStringPtr(f, FieldFileUserID),
		TagIDs:       fieldStrings(f, FieldTags),
		Score:        match.Score,
	}
	h.LanguageIsRTL = fieldBool(f, FieldLanguageIsRTL)
	h.LanguagePriority = int(fieldFloat(f, FieldLanguagePriority))
	h.LocationUserID = fieldStringPtr(f, FieldLocationUserID)

	if h.EntityID == "" || h.LanguageID == "" {
		return nil, errors.InconsistentIndexf("document %s is missing identity fields", match.ID)
	}

	var err error
	if h.DetailCreatedAt, err = fieldTime(f, FieldDetailCreatedAt); err != nil {
		return nil, err
	}
	if h.DetailUpdatedAt, err = fieldTime(f, FieldDetailUpdatedAt); err != nil {
		return nil, err
	}
	if h.DetailVerifiedAt, err = fieldTimePtr(f, FieldDetailVerifiedAt); err != nil {
		return nil, err
	}
	if h.LocationVerifiedAt, err = fieldTimePtr(f, FieldLocationVerifiedAt); err != nil {
		return nil, err
	}
	if h.FileVerifiedAt, err = fieldTimePtr(f, FieldFileVerifiedAt); err != nil {
		return nil, err
	}

	if h.LocationID != "" {
		h.HasLocation = true
		h.Latitude = fieldFloat(f, FieldLocationLat)
		h.Longitude = fieldFloat(f, FieldLocationLon)
	}
	return h, nil
}

func fieldString(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func fieldStringPtr(f map[string]any, key string) *string {
	if s := fieldString(f, key); s != "" {
		return &s
	}
	return nil
}

func fieldStrings(f map[string]any, key string) []string {
	switch v := f[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func fieldFloat(f map[string]any, key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case []any:
		if len(v) > 0 {
			if n, ok := v[0].(float64); ok {
				return n
			}
		}
	}
	return 0
}

func fieldBool(f map[string]any, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case []any:
		if len(v) > 0 {
			if b, ok := v[0].(bool); ok {
				return b
			}
		}
	}
	return false
}

func fieldTime(f map[string]any, key string) (time.Time, error) {
	s := fieldString(f, key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.CodeInconsistentIndex, "decode %s", key)
	}
	return t, nil
}

func fieldTimePtr(f map[string]any, key string) (*time.Time, error) {
	s := fieldString(f, key)
	if s == "" {
		return nil, nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInconsistentIndex, "decode %s", key)
	}
	return &t, nil
}

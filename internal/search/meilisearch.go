package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/models"
)

// LocationIndex wraps the Meilisearch index holding location records. It
// is the only component that mutates remote state.
type LocationIndex struct {
	client *meilisearch.Client
	index  string
	logger *logrus.Logger
}

// NewLocationIndex builds a client for the given index. The timeout bounds
// every remote call; zero falls back to 30s.
func NewLocationIndex(host, apiKey, index string, timeout time.Duration, logger *logrus.Logger) *LocationIndex {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:    host,
		APIKey:  apiKey,
		Timeout: timeout,
	})
	return &LocationIndex{client: client, index: index, logger: logger}
}

// EnsureIndex creates the index when it does not exist yet. Creating an
// existing index is accepted by the engine and only fails in the resulting
// task, so the duplicate has to be detected there.
func (s *LocationIndex) EnsureIndex() error {
	info, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	if err != nil {
		return err
	}
	task, err := s.client.WaitForTask(info.TaskUID)
	if err != nil {
		return err
	}
	if task.Status != meilisearch.TaskStatusSucceeded && task.Error.Code != "index_already_exists" {
		return fmt.Errorf("index task %d ended %s: %s", info.TaskUID, task.Status, task.Error.Message)
	}
	return nil
}

// ApplySettings declares the searchable, filterable and sortable fields
// plus the synonym table. Re-applied whenever the index is created or
// reconfigured.
func (s *LocationIndex) ApplySettings(synonyms map[string][]string) error {
	idx := s.client.Index(s.index)

	if _, err := idx.UpdateSearchableAttributes(&[]string{
		"name",
		"search_keywords",
		"state",
		"municipality",
		"city",
		"postal_codes",
	}); err != nil {
		return err
	}

	if _, err := idx.UpdateFilterableAttributes(&[]string{
		"type",
		"slug",
		"state_slug",
		"municipality_slug",
		"city_slug",
		"parent_slug",
	}); err != nil {
		return err
	}

	if _, err := idx.UpdateSortableAttributes(&[]string{
		"popularity",
		"name",
	}); err != nil {
		return err
	}

	if len(synonyms) > 0 {
		if _, err := idx.UpdateSynonyms(&synonyms); err != nil {
			return err
		}
	}

	return nil
}

// FetchAll pages through every document in the index.
func (s *LocationIndex) FetchAll() ([]models.LocationRecord, error) {
	const pageSize = 1000
	var (
		records []models.LocationRecord
		offset  int64
	)
	for {
		var resp meilisearch.DocumentsResult
		err := s.client.Index(s.index).GetDocuments(&meilisearch.DocumentsQuery{
			Offset: offset,
			Limit:  pageSize,
		}, &resp)
		if err != nil {
			// A missing index is an empty remote state, not a failure.
			var meiliErr *meilisearch.Error
			if errors.As(err, &meiliErr) && meiliErr.StatusCode == 404 {
				return nil, nil
			}
			return nil, err
		}
		for _, doc := range resp.Results {
			records = append(records, recordFromDocument(doc))
		}
		offset += int64(len(resp.Results))
		if offset >= resp.Total || len(resp.Results) == 0 {
			break
		}
	}
	return records, nil
}

// Upsert sends one batch of records and waits for the index to confirm it.
func (s *LocationIndex) Upsert(batch []models.LocationRecord) error {
	if len(batch) == 0 {
		return nil
	}
	info, err := s.client.Index(s.index).AddDocuments(batch)
	if err != nil {
		return err
	}
	return s.waitTask(info)
}

// Delete removes one batch of ids and waits for confirmation.
func (s *LocationIndex) Delete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	info, err := s.client.Index(s.index).DeleteDocuments(ids)
	if err != nil {
		return err
	}
	return s.waitTask(info)
}

func (s *LocationIndex) waitTask(info *meilisearch.TaskInfo) error {
	task, err := s.client.WaitForTask(info.TaskUID)
	if err != nil {
		return err
	}
	if task.Status != meilisearch.TaskStatusSucceeded {
		return fmt.Errorf("index task %d ended %s: %s", info.TaskUID, task.Status, task.Error.Message)
	}
	return nil
}

// Search runs a query against the remote index. Typo tolerance and the
// synonym table are applied by the engine itself; results come back ranked
// by popularity then name within equal relevance.
func (s *LocationIndex) Search(query string, opts SearchOptions) ([]models.LocationRecord, error) {
	req := &meilisearch.SearchRequest{
		Limit: int64(opts.Limit),
		Sort:  []string{"popularity:desc", "name:asc"},
	}
	if filter := buildTypeFilter(opts); filter != "" {
		req.Filter = filter
	}

	res, err := s.client.Index(s.index).Search(query, req)
	if err != nil {
		return nil, err
	}

	records := make([]models.LocationRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, recordFromDocument(doc))
	}
	return records, nil
}

// Top returns the most popular records of one type.
func (s *LocationIndex) Top(t models.EntityType, limit int) ([]models.LocationRecord, error) {
	return s.Search("", SearchOptions{Types: []models.EntityType{t}, Limit: limit})
}

func buildTypeFilter(opts SearchOptions) string {
	var parts []string
	if len(opts.Types) > 0 {
		typeParts := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			typeParts[i] = fmt.Sprintf("type = %q", string(t))
		}
		parts = append(parts, "("+strings.Join(typeParts, " OR ")+")")
	}
	if opts.CitySlug != "" {
		parts = append(parts, fmt.Sprintf("city_slug = %q", opts.CitySlug))
	}
	return strings.Join(parts, " AND ")
}

// recordFromDocument rebuilds a LocationRecord from an index document.
func recordFromDocument(doc map[string]interface{}) models.LocationRecord {
	rec := models.LocationRecord{
		ID:               docString(doc, "id"),
		Name:             docString(doc, "name"),
		Slug:             docString(doc, "slug"),
		Type:             models.EntityType(docString(doc, "type")),
		State:            docString(doc, "state"),
		StateSlug:        docString(doc, "state_slug"),
		Municipality:     docString(doc, "municipality"),
		MunicipalitySlug: docString(doc, "municipality_slug"),
		City:             docString(doc, "city"),
		CitySlug:         docString(doc, "city_slug"),
		ParentSlug:       docString(doc, "parent_slug"),
		UpdatedAt:        docString(doc, "updated_at"),
		SearchKeywords:   docStrings(doc, "search_keywords"),
		PostalCodes:      docStrings(doc, "postal_codes"),
	}
	if v, ok := doc["popularity"].(float64); ok {
		rec.Popularity = int(v)
	}
	if v, ok := doc["lat"].(float64); ok {
		rec.Lat = &v
	}
	if v, ok := doc["lng"].(float64); ok {
		rec.Lng = &v
	}
	return rec
}

func docString(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func docStrings(doc map[string]interface{}, key string) []string {
	raw, ok := doc[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// isTransient reports whether a remote error is worth retrying: rate
// limiting or temporary unavailability.
func isTransient(err error) bool {
	var meiliErr *meilisearch.Error
	if errors.As(err, &meiliErr) {
		switch meiliErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
	}
	return false
}

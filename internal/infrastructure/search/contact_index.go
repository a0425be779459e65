package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ContactIndex keeps a searchable copy of contacts in Elasticsearch. The
// store stays the source of truth; hits are ids to be re-read from it.
type ContactIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewContactIndex(es *elasticsearch.Client, index string) *ContactIndex {
	return &ContactIndex{ES: es, Index: index}
}

type contactDoc struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ExtraInfo string `json:"extra_info,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

func toDoc(c entity.Contact) contactDoc {
	d := contactDoc{
		ID:        c.ID,
		UserID:    c.UserID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if c.ExtraInfo != nil {
		d.ExtraInfo = *c.ExtraInfo
	}
	return d
}

func responseErr(op string, res *esapi.Response) error {
	if res.IsError() {
		return fmt.Errorf("es %s: %s", op, res.Status())
	}
	return nil
}

func (x *ContactIndex) Index(ctx context.Context, c entity.Contact) error {
	b, err := json.Marshal(toDoc(c))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: strconv.FormatInt(c.ID, 10), Body: bytes.NewReader(b), Refresh: "false"}
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(cctx, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return responseErr("index", res)
}

func (x *ContactIndex) Remove(ctx context.Context, contactID int64) error {
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: strconv.FormatInt(contactID, 10)}
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(cctx, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode == 404 {
		return nil
	}
	return responseErr("delete", res)
}

// Search runs a multi_match over names, email and phone, filtered to one
// owner, and returns matching contact ids by relevance.
func (x *ContactIndex) Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"first_name^2", "last_name^2", "email", "phone", "extra_info"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": ownerID},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(cctx),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if err := responseErr("search", res); err != nil {
		return nil, err
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

const contactMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "long"},
      "user_id":    {"type": "long"},
      "first_name": {"type": "text"},
      "last_name":  {"type": "text"},
      "email":      {"type": "text", "analyzer": "simple"},
      "phone":      {"type": "keyword"},
      "extra_info": {"type": "text"},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist.
func (x *ContactIndex) EnsureIndex(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{x.Index}}.Do(cctx, x.ES)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}
	if exists.StatusCode != 404 {
		return responseErr("exists", exists)
	}

	res, err := esapi.IndicesCreateRequest{Index: x.Index, Body: strings.NewReader(contactMapping)}.Do(cctx, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return responseErr("create index", res)
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/texasiusc/resources/internal/post"
	"github.com/texasiusc/resources/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore answers the fixed query shapes from a Mongo mirror of the
// content dataset. Documents keep the repository's wire shape, keyed by _id.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore wraps col and ensures its indexes. An index failure is logged
// and does not stop the store from serving reads.
func NewMongoStore(col *mongo.Collection) *MongoStore {
	m := &MongoStore{col: col}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.EnsureIndexes(ctx); err != nil {
		logger.Warnf("mongo %s: %v", col.Name(), err)
	}
	return m
}

// EnsureIndexes creates the unique slug index that backs every detail page.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "slug.current", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := m.col.Indexes().CreateOne(ctx, idxModel); err != nil {
		return fmt.Errorf("ensure slug index: %w", err)
	}
	return nil
}

var summaryFields = bson.M{"_id": 1, "title": 1, "slug": 1, "publishedAt": 1, "tags": 1}

func (m *MongoStore) Fetch(ctx context.Context, q post.Query, params post.Params) (json.RawMessage, error) {
	switch q.Name {
	case post.PostBySlug.Name:
		slug, err := stringParam(params, "slug")
		if err != nil {
			return nil, err
		}
		var d post.Document
		err = m.col.FindOne(ctx, bson.M{"_type": "post", "slug.current": slug}).Decode(&d)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return json.RawMessage("null"), nil
			}
			return nil, fmt.Errorf("%s: %w", q.Name, err)
		}
		return json.Marshal(d)
	case post.AllPosts.Name:
		return m.summaries(ctx, q, bson.M{"_type": "post"})
	case post.SearchPosts.Name:
		term, err := stringParam(params, "term")
		if err != nil {
			return nil, err
		}
		return m.summaries(ctx, q, searchFilter(term))
	case post.AllPostsFull.Name:
		docs, err := m.find(ctx, bson.M{"_type": "post"}, options.Find())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q.Name, err)
		}
		return json.Marshal(docs)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, q.Name)
}

func (m *MongoStore) summaries(ctx context.Context, q post.Query, filter bson.M) (json.RawMessage, error) {
	docs, err := m.find(ctx, filter, options.Find().SetProjection(summaryFields))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", q.Name, err)
	}
	out := make([]wireSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, toWireSummary(d))
	}
	return json.Marshal(out)
}

func (m *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]post.Document, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []post.Document{}
	for cur.Next(ctx) {
		var d post.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}

// Upsert writes a full document into the mirror, keyed by _id.
func (m *MongoStore) Upsert(ctx context.Context, d *post.Document) error {
	if d.Type == "" {
		d.Type = "post"
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, opts); err != nil {
		return fmt.Errorf("upsert post %s: %w", d.ID, err)
	}
	return nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}

// searchFilter mirrors post.Matches: exact tag equality, or every token of the
// term prefixing a word of the title (or of the body text).
func searchFilter(term string) bson.M {
	term = strings.TrimSpace(term)
	or := bson.A{bson.M{"tags": term}}
	if toks := post.Tokenize(term); len(toks) > 0 {
		or = append(or,
			bson.M{"$and": tokenClauses("title", toks)},
			bson.M{"$and": tokenClauses("body.children.text", toks)},
		)
	}
	return bson.M{"_type": "post", "$or": or}
}

func tokenClauses(field string, toks []string) bson.A {
	out := make(bson.A, 0, len(toks))
	for _, tok := range toks {
		out = append(out, bson.M{field: bson.M{"$regex": wordPrefix(tok), "$options": "i"}})
	}
	return out
}

func wordPrefix(tok string) string {
	return `(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(tok)
}

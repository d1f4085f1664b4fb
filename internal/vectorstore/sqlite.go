package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/didi/gendry/builder"
	_ "modernc.org/sqlite"

	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errs"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	record TEXT NOT NULL,
	embedding BLOB NOT NULL,
	created_ts INTEGER NOT NULL
);`

// sqliteIndex is a file-backed Index: one sqlite database per domain, vectors
// stored as JSON float arrays, similarity computed in process. Writes are
// serialized with a mutex; concurrent reads go straight to the database.
type sqliteIndex struct {
	db      *sql.DB
	path    string
	writeMu sync.Mutex
}

func OpenSQLite(path string) (Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("open index", err)
	}
	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, storageErr("create entries table", err)
	}
	return &sqliteIndex{db: db, path: path}, nil
}

func (s *sqliteIndex) Insert(ctx context.Context, vector []float32, rec model.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalid, err)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", errs.ErrInvalid)
	}
	recordBlob, err := json.Marshal(rec)
	if err != nil {
		return storageErr("encode record", err)
	}
	embeddingBlob, err := json.Marshal(vector)
	if err != nil {
		return storageErr("encode embedding", err)
	}
	data := map[string]interface{}{
		"kind":       rec.Kind,
		"record":     string(recordBlob),
		"embedding":  embeddingBlob,
		"created_ts": time.Now().UnixMilli(),
	}
	sqlStr, args, err := builder.BuildInsert("entries", []map[string]interface{}{data})
	if err != nil {
		return storageErr("build insert", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return storageErr("insert entry", err)
	}
	return nil
}

func (s *sqliteIndex) Query(ctx context.Context, vector []float32, k int) ([]model.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	sqlStr, args, err := builder.BuildSelect("entries", nil, []string{"record", "embedding"})
	if err != nil {
		return nil, storageErr("build select", err)
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, storageErr("query entries", err)
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var recordBlob string
		var embeddingBlob []byte
		if err := rows.Scan(&recordBlob, &embeddingBlob); err != nil {
			return nil, storageErr("scan entry", err)
		}
		rec, err := model.DecodeRecord([]byte(recordBlob))
		if err != nil {
			return nil, storageErr("decode record", err)
		}
		var emb []float32
		if err := json.Unmarshal(embeddingBlob, &emb); err != nil {
			return nil, storageErr("decode embedding", err)
		}
		results = append(results, model.SearchResult{
			Record: rec,
			Score:  cosineSimilarity(vector, emb),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate entries", err)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *sqliteIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, storageErr("count entries", err)
	}
	return count, nil
}

func (s *sqliteIndex) Path() string {
	return s.path
}

func (s *sqliteIndex) Close() error {
	return s.db.Close()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errs.ErrStorage, err)
}

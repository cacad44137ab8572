package redis

import (
	"context"
	"strings"

	"github.com/redis/rueidis"

	"github.com/vendora-cloud/semsearch/internal/db"
)

// IndexExists checks for the index via FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	err := s.do(ctx, cmd).Error()
	if err == nil {
		return true, nil
	}
	if isUnknownIndexErr(err) {
		return false, nil
	}
	return false, &db.Error{Op: db.OpIndex, Err: err}
}

// EnsureIndex creates the index if it does not exist yet.
func (s *Store) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}

	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(def.Args()...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		// Lost a create race with another instance.
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	return nil
}

func isUnknownIndexErr(err error) bool {
	return isRedisErr(err, "unknown index") || isRedisErr(err, "no such index")
}

// isRedisErr checks if err is a Redis server error containing substr
// (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

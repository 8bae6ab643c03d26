// Package sqlxrepos implements the repositories on top of sqlx, with queries built by squirrel.
// Queries are built with "?" placeholders and rebound to the driver's bindvar type.
package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type baseRepository struct {
	db core.DBQueryer
}

func (repo baseRepository) count(ctx context.Context, b sq.SelectBuilder, msg string) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building "+msg+" query")
	}
	var n int
	if err = repo.db.GetContext(ctx, &n, repo.db.Rebind(query), args...); err != nil {
		return 0, errors.Wrap(err, msg)
	}
	return n, nil
}

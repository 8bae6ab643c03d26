package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/user"
)

type userRepository struct {
	baseRepository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DBQueryer) *userRepository {
	return &userRepository{baseRepository{db: db}}
}

func (repo userRepository) GetIdentity(ctx context.Context, id int64) (user.Identity, error) {
	query, args, err := qb.Select("id", "role").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return user.Identity{}, errors.Wrap(err, "building get identity query")
	}
	var row struct {
		ID   int64  `db:"id"`
		Role string `db:"role"`
	}
	if err = repo.db.GetContext(ctx, &row, repo.db.Rebind(query), args...); err != nil {
		return user.Identity{}, trapNoRowsErr(err, user.ErrNotFound, "getting identity")
	}
	return user.Identity{ID: row.ID, Role: user.Role(row.Role)}, nil
}

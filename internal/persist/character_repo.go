package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CharacterRow mirrors one characters table row. Runtime-only state such as
// the current command or visibility never persists.
type CharacterRow struct {
	ID          int64
	AccountName string
	Name        string
	Gender      int16
	Level       int32
	XP          int64
	ZoneID      int32
	X, Y        float32
	HP, MaxHP   int32
	MP, MaxMP   int32
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) Load(ctx context.Context, name string) (*CharacterRow, error) {
	row := &CharacterRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_name, name, gender, level, xp, zone_id, x, y, hp, max_hp, mp, max_mp
		 FROM characters WHERE name = $1`, name,
	).Scan(
		&row.ID, &row.AccountName, &row.Name, &row.Gender, &row.Level, &row.XP,
		&row.ZoneID, &row.X, &row.Y, &row.HP, &row.MaxHP, &row.MP, &row.MaxMP,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *CharacterRepo) LoadByAccount(ctx context.Context, accountName string) ([]CharacterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, account_name, name, gender, level, xp, zone_id, x, y, hp, max_hp, mp, max_mp
		 FROM characters WHERE account_name = $1 ORDER BY id`, accountName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CharacterRow
	for rows.Next() {
		var row CharacterRow
		if err := rows.Scan(
			&row.ID, &row.AccountName, &row.Name, &row.Gender, &row.Level, &row.XP,
			&row.ZoneID, &row.X, &row.Y, &row.HP, &row.MaxHP, &row.MP, &row.MaxMP,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *CharacterRepo) Create(ctx context.Context, c *CharacterRow) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (account_name, name, gender, level, xp, zone_id, x, y, hp, max_hp, mp, max_mp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		c.AccountName, c.Name, c.Gender, c.Level, c.XP, c.ZoneID, c.X, c.Y, c.HP, c.MaxHP, c.MP, c.MaxMP,
	).Scan(&c.ID)
}

// SaveSnapshot writes the periodically captured live state for one character.
func (r *CharacterRepo) SaveSnapshot(ctx context.Context, c *CharacterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters
		 SET level = $2, xp = $3, zone_id = $4, x = $5, y = $6,
		     hp = $7, max_hp = $8, mp = $9, max_mp = $10, saved_at = now()
		 WHERE id = $1`,
		c.ID, c.Level, c.XP, c.ZoneID, c.X, c.Y, c.HP, c.MaxHP, c.MP, c.MaxMP,
	)
	return err
}

package db

import (
	"context"
)

const createUser = `
INSERT INTO users (pseudo) VALUES (?)
ON CONFLICT (pseudo) DO NOTHING
`

// CreateUser registers a pseudo if it is not known yet. Returns whether a
// row was inserted.
func (q *Queries) CreateUser(ctx context.Context, pseudo string) (bool, error) {
	res, err := q.db.ExecContext(ctx, createUser, pseudo)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const upsertUser = `
INSERT INTO users (pseudo, display_name, profile_url, last_seen)
VALUES (?, ?, ?, ?)
ON CONFLICT (pseudo) DO UPDATE SET
    display_name = excluded.display_name,
    profile_url = excluded.profile_url,
    last_seen = excluded.last_seen
`

type UpsertUserParams struct {
	Pseudo      string
	DisplayName string
	ProfileURL  string
	LastSeen    int64
}

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) error {
	_, err := q.db.ExecContext(
		ctx, upsertUser,
		arg.Pseudo, arg.DisplayName, arg.ProfileURL, arg.LastSeen,
	)
	return err
}

const listUsers = `
SELECT pseudo, display_name, profile_url, last_seen FROM users ORDER BY pseudo
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(&u.Pseudo, &u.DisplayName, &u.ProfileURL, &u.LastSeen)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const upsertMonster = `
INSERT INTO monsters (id, name, normal_name, type, zone, subzone, step)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    normal_name = excluded.normal_name,
    type = excluded.type,
    zone = excluded.zone,
    subzone = excluded.subzone,
    step = excluded.step
`

type UpsertMonsterParams struct {
	ID         int64
	Name       string
	NormalName string
	Type       string
	Zone       string
	Subzone    string
	Step       int64
}

func (q *Queries) UpsertMonster(ctx context.Context, arg UpsertMonsterParams) error {
	_, err := q.db.ExecContext(
		ctx, upsertMonster,
		arg.ID, arg.Name, arg.NormalName, arg.Type, arg.Zone, arg.Subzone, arg.Step,
	)
	return err
}

const listMonsters = `
SELECT id, name, normal_name, type, zone, subzone, step FROM monsters ORDER BY id
`

func (q *Queries) ListMonsters(ctx context.Context) ([]Monster, error) {
	rows, err := q.db.QueryContext(ctx, listMonsters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var monsters []Monster
	for rows.Next() {
		var m Monster
		err := rows.Scan(&m.ID, &m.Name, &m.NormalName, &m.Type, &m.Zone, &m.Subzone, &m.Step)
		if err != nil {
			return nil, err
		}
		monsters = append(monsters, m)
	}
	return monsters, rows.Err()
}

const deleteHoldings = `
DELETE FROM holdings WHERE pseudo = ?
`

func (q *Queries) DeleteHoldings(ctx context.Context, pseudo string) error {
	_, err := q.db.ExecContext(ctx, deleteHoldings, pseudo)
	return err
}

const createHolding = `
INSERT INTO holdings (pseudo, monster_id, owned, for_trade, searched, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateHoldingParams struct {
	Pseudo    string
	MonsterID int64
	Owned     int64
	ForTrade  int64
	Searched  int64
	UpdatedAt int64
}

func (q *Queries) CreateHolding(ctx context.Context, arg CreateHoldingParams) error {
	_, err := q.db.ExecContext(
		ctx, createHolding,
		arg.Pseudo, arg.MonsterID, arg.Owned, arg.ForTrade, arg.Searched, arg.UpdatedAt,
	)
	return err
}

const listHoldings = `
SELECT pseudo, monster_id, owned, for_trade, searched, updated_at
FROM holdings ORDER BY pseudo, monster_id
`

func (q *Queries) ListHoldings(ctx context.Context) ([]Holding, error) {
	rows, err := q.db.QueryContext(ctx, listHoldings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		var h Holding
		err := rows.Scan(&h.Pseudo, &h.MonsterID, &h.Owned, &h.ForTrade, &h.Searched, &h.UpdatedAt)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mage-engine/mage/internal/entity"
)

// SnapshotRepo stores the serializable entities of a scene.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// SaveScene replaces everything stored for scene with snaps in a single
// transaction.
func (r *SnapshotRepo) SaveScene(ctx context.Context, scene string, snaps []entity.Snapshot) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scene_entities WHERE scene = $1`, scene); err != nil {
		return fmt.Errorf("snapshot clear %s: %w", scene, err)
	}

	now := time.Now().UnixMilli()
	for _, s := range snaps {
		row, err := encodeSnapshot(s)
		if err != nil {
			return fmt.Errorf("snapshot encode %s: %w", s.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scene_entities
			   (scene, uuid, name, type, parent, tags, position, quaternion, scale, properties, saved_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (scene, uuid) DO UPDATE SET
			   name = excluded.name, type = excluded.type, parent = excluded.parent,
			   tags = excluded.tags, position = excluded.position,
			   quaternion = excluded.quaternion, scale = excluded.scale,
			   properties = excluded.properties, saved_at = excluded.saved_at`,
			scene, s.UUID, s.Name, string(s.Type), s.Parent,
			row.tags, row.position, row.quaternion, row.scale, row.properties, now,
		); err != nil {
			return fmt.Errorf("snapshot insert %s: %w", s.Name, err)
		}
	}

	return tx.Commit()
}

// LoadScene returns the stored entities of scene ordered by name.
func (r *SnapshotRepo) LoadScene(ctx context.Context, scene string) ([]entity.Snapshot, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT uuid, name, type, parent, tags, position, quaternion, scale, properties
		 FROM scene_entities
		 WHERE scene = $1
		 ORDER BY name, uuid`, scene,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entity.Snapshot
	for rows.Next() {
		var (
			s   entity.Snapshot
			typ string
			row snapshotRow
		)
		if err := rows.Scan(&s.UUID, &s.Name, &typ, &s.Parent,
			&row.tags, &row.position, &row.quaternion, &row.scale, &row.properties,
		); err != nil {
			return nil, err
		}
		s.Type = entity.Type(typ)
		if err := row.decode(&s); err != nil {
			return nil, fmt.Errorf("snapshot decode %s: %w", s.Name, err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeleteEntity removes one stored entity. Missing rows are not an error.
func (r *SnapshotRepo) DeleteEntity(ctx context.Context, scene, uuid string) error {
	_, err := r.db.SQL.ExecContext(ctx,
		`DELETE FROM scene_entities WHERE scene = $1 AND uuid = $2`, scene, uuid,
	)
	return err
}

// Scenes lists the names of all scenes with stored entities.
func (r *SnapshotRepo) Scenes(ctx context.Context) ([]string, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT DISTINCT scene FROM scene_entities ORDER BY scene`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// snapshotRow holds the JSON-encoded columns of a snapshot.
type snapshotRow struct {
	tags       string
	position   string
	quaternion string
	scale      string
	properties string
}

func encodeSnapshot(s entity.Snapshot) (snapshotRow, error) {
	var row snapshotRow
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	props := s.Properties
	if props == nil {
		props = map[string]any{}
	}
	q := s.Quaternion
	for _, f := range []struct {
		dst *string
		v   any
	}{
		{&row.tags, tags},
		{&row.position, s.Position},
		{&row.quaternion, [4]float32{q.V[0], q.V[1], q.V[2], q.W}},
		{&row.scale, s.Scale},
		{&row.properties, props},
	} {
		data, err := json.Marshal(f.v)
		if err != nil {
			return row, err
		}
		*f.dst = string(data)
	}
	return row, nil
}

func (row snapshotRow) decode(s *entity.Snapshot) error {
	var q [4]float32
	for _, f := range []struct {
		src string
		dst any
	}{
		{row.tags, &s.Tags},
		{row.position, &s.Position},
		{row.quaternion, &q},
		{row.scale, &s.Scale},
		{row.properties, &s.Properties},
	} {
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return err
		}
	}
	s.Quaternion = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
	if len(s.Tags) == 0 {
		s.Tags = nil
	}
	return nil
}

package dao

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/metrics"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/database/postgres"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// PetDAO 宠物数据访问对象
type PetDAO struct {
	base
}

// NewPetDAO 创建宠物 DAO
func NewPetDAO(tx postgres.Tx, l logger.Logger, m *metrics.EngineMetrics) *PetDAO {
	return &PetDAO{base: newBase(tx, TablePets, l, m)}
}

// Get 根据 ID 获取宠物
func (d *PetDAO) Get(ctx context.Context, id int64) (*model.Pet, error) {
	return d.get(ctx, id, false)
}

// GetForUpdate 根据 ID 获取宠物并加行锁
func (d *PetDAO) GetForUpdate(ctx context.Context, id int64) (*model.Pet, error) {
	return d.get(ctx, id, true)
}

func (d *PetDAO) get(ctx context.Context, id int64, forUpdate bool) (*model.Pet, error) {
	q := sq.Select("*").From(TablePets).Where(squirrel.Eq{"id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	var pet model.Pet
	if err := d.queryOne(ctx, "select", q, &pet); err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("pet %d", id)
		}
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &pet, nil
}

// Create 创建宠物
func (d *PetDAO) Create(ctx context.Context, pet *model.Pet) error {
	pet.Version = 1
	q := sq.Insert(TablePets).
		Columns("id", "owner_id", "name", "level", "experience",
			"mood", "hunger", "stamina", "cleanliness", "health",
			"skin_color", "background_color", "version", "created_at", "updated_at").
		Values(pet.ID, pet.OwnerID, pet.Name, pet.Level, pet.Experience,
			pet.Mood, pet.Hunger, pet.Stamina, pet.Cleanliness, pet.Health,
			pet.SkinColor, pet.BackgroundColor, pet.Version, pet.CreatedAt, pet.UpdatedAt)

	if _, err := d.exec(ctx, "insert", q); err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

// Update 按版本号条件更新宠物
func (d *PetDAO) Update(ctx context.Context, pet *model.Pet) error {
	q := sq.Update(TablePets).
		SetMap(map[string]any{
			"level":                     pet.Level,
			"experience":                pet.Experience,
			"mood":                      pet.Mood,
			"hunger":                    pet.Hunger,
			"stamina":                   pet.Stamina,
			"cleanliness":               pet.Cleanliness,
			"health":                    pet.Health,
			"skin_color":                pet.SkinColor,
			"background_color":          pet.BackgroundColor,
			"last_skin_change_at":       pet.LastSkinChangeAt,
			"last_background_change_at": pet.LastBackgroundChangeAt,
			"updated_at":                pet.UpdatedAt,
			"version":                   squirrel.Expr("version + 1"),
		}).
		Where(squirrel.Eq{"id": pet.ID, "version": pet.Version})

	n, err := d.exec(ctx, "update", q)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	if n == 0 {
		return errors.Wrapf(errs.ErrConcurrentUpdate, "pet %d version %d", pet.ID, pet.Version)
	}
	pet.Version++
	return nil
}

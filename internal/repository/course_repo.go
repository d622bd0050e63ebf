package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gangnaeng/backend/internal/model"
	pkgerrors "gangnaeng/backend/pkg/errors"
)

// CourseFilter 课程列表筛选条件
type CourseFilter struct {
	Keyword  string // 匹配课程名 / 代码 / 教授
	Category string
	Day      string // 仅返回在该星期有课的课程
}

// CourseRepository 课程目录数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByCodeSection(ctx context.Context, code, section string) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error)
	// ListByCodes 按课程代码（不区分大小写）批量加载全部分班
	ListByCodes(ctx context.Context, codes []string) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	// Update 乐观锁更新课程，并在同一事务中全量替换上课时间
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	// 关联的 Slots 由 GORM 一并插入
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Slots", orderSlots).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByCodeSection(ctx context.Context, code, section string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("code = ? AND section = ?", code, section).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Course{})
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("name ILIKE ? OR code ILIKE ? OR professor ILIKE ?", like, like, like)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Day != "" {
		db = db.Where("course_id IN (?)",
			r.db.Model(&model.CourseSlot{}).Select("course_id").Where("day_of_week = ?", filter.Day))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Slots", orderSlots).
		Order("code ASC, section ASC").
		Offset(offset).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *courseRepo) ListByCodes(ctx context.Context, codes []string) ([]model.Course, error) {
	var courses []model.Course
	if len(codes) == 0 {
		return courses, nil
	}
	upper := make([]string, 0, len(codes))
	for _, c := range codes {
		upper = append(upper, strings.ToUpper(c))
	}
	err := r.db.WithContext(ctx).
		Preload("Slots", orderSlots).
		Where("UPPER(code) IN ?", upper).
		Order("code ASC, section ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Slots", orderSlots).
		Order("code ASC, section ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	oldVersion := course.Version
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Course{}).
			Where("course_id = ? AND version = ?", course.CourseID, oldVersion).
			Updates(map[string]interface{}{
				"code":       course.Code,
				"section":    course.Section,
				"name":       course.Name,
				"professor":  course.Professor,
				"credits":    course.Credits,
				"category":   course.Category,
				"color":      course.Color,
				"version":    oldVersion + 1,
				"updated_at": gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		// 上课时间全量替换（硬删除，无需审计）
		if err := tx.Where("course_id = ?", course.CourseID).Delete(&model.CourseSlot{}).Error; err != nil {
			return err
		}
		for i := range course.Slots {
			course.Slots[i].SlotID = ""
			course.Slots[i].CourseID = course.CourseID
		}
		if len(course.Slots) > 0 {
			if err := tx.Create(&course.Slots).Error; err != nil {
				return err
			}
		}

		course.Version = oldVersion + 1
		return nil
	})
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func orderSlots(db *gorm.DB) *gorm.DB {
	return db.Order("day_of_week ASC, start_time ASC")
}

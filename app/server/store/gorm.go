package store

import (
	"admin-backend/app/server/models"
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"strings"
)

var _ AdminStore = (*Gorm)(nil)

type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return &admin, nil
}

func (s *Gorm) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

func (s *Gorm) Insert(ctx context.Context, req CreateAdmin) (*models.Admin, error) {
	admin := models.Admin{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.PasswordHash,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 唯一索引之外再检查一次，部分数据库不会翻译约束错误
		var counter int64
		if err := tx.Model(&models.Admin{}).Where("email = ?", req.Email).Count(&counter).Error; err != nil {
			return err
		}
		if counter > 0 {
			return ErrDuplicateEmail
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}

	return &admin, nil
}

func (s *Gorm) UpdateFields(ctx context.Context, id uint, update Update) error {
	if update == nil {
		return errors.New("update is nil")
	}

	res := s.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Updates(update.fields())
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update admin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Admin{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete admin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) List(ctx context.Context, q ListQuery) ([]models.Admin, int64, error) {
	// 每次查询都需要新的 statement
	queryBase := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Admin{})
		if q.Name != "" {
			tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Name)+"%")
		}
		return tx
	}

	var total int64
	if err := queryBase().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count admins: %w", err)
	}

	query := queryBase().Order("id ASC").Offset(q.Offset)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	admins := []models.Admin{}
	if err := query.Find(&admins).Error; err != nil {
		return nil, 0, fmt.Errorf("list admins: %w", err)
	}

	return admins, total, nil
}

func (s *Gorm) Count(ctx context.Context) (int64, error) {
	var counter int64
	if err := s.db.WithContext(ctx).Model(&models.Admin{}).Count(&counter).Error; err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return counter, nil
}

package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/Greybash/ngo-service/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 捐款成功后覆盖写入资料的字段
var profileSyncColumns = []string{
	"phone",
	"country_code",
	"country",
	"state",
	"city",
	"postal_code",
	"address",
	"updated_at",
}

// ProfileLogic 捐款人资料
type ProfileLogic struct {
	db *gorm.DB
}

// NewProfileLogic 创建资料业务逻辑
func NewProfileLogic(db *gorm.DB) *ProfileLogic {
	return &ProfileLogic{db: db}
}

// SyncFromDonation 用捐款中的联系方式和地址覆盖账户资料，不存在时创建
func (p *ProfileLogic) SyncFromDonation(ctx context.Context, userID int64, d *model.DonationModel) error {
	profile := model.UserProfileModel{
		UserID:      userID,
		Phone:       d.Phone,
		CountryCode: d.CountryCode,
		Country:     d.Country,
		State:       d.State,
		City:        d.City,
		PostalCode:  d.PostalCode,
		Address:     d.Address,
	}

	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(profileSyncColumns),
	}).Create(&profile).Error
	if err != nil {
		return &ProfileSyncError{UserID: userID, Err: err}
	}
	return nil
}

// GetProfile 获取资料，不存在时返回 nil
func (p *ProfileLogic) GetProfile(ctx context.Context, userID int64) (*model.UserProfileModel, error) {
	var profile model.UserProfileModel
	if err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取用户资料失败: %w", err)
	}
	return &profile, nil
}

// EnsureProfiles 为没有资料的账户补建空资料，返回新建数量
func (p *ProfileLogic) EnsureProfiles(ctx context.Context) (int, error) {
	var userIDs []int64
	err := p.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Joins("LEFT JOIN user_profile ON user_profile.user_id = \"user\".id").
		Where("user_profile.id IS NULL").
		Pluck("\"user\".id", &userIDs).Error
	if err != nil {
		return 0, fmt.Errorf("查询缺少资料的账户失败: %w", err)
	}

	created := 0
	for _, id := range userIDs {
		profile := model.NewUserProfile(id)
		res := p.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
			Create(profile)
		if res.Error != nil {
			return created, fmt.Errorf("为用户 %d 创建资料失败: %w", id, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

package model

// AllModels 返回需要迁移的模型，被引用的表在前
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&UserProfileModel{},
		&DonationModel{},
		&VolunteerApplicationModel{},
		&JobModel{},
		&JobApplicationModel{},
	}
}

package repository

import "gorm.io/gorm"

// Repository 所有本地 Repository 的聚合入口
// 业务数据在上游，本地只有排课提交流水
type Repository struct {
	Submission SubmissionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Submission: NewSubmissionRepo(db),
	}
}

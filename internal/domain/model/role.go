package model

const (
	RoleNameAdministrator = "Administrator"
	RoleNameUser          = "User"
)

// 名前はユニーク。作成後は基本的に変わらない。
type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

package models

import "time"

// GroupMemberRole represents a member's role within a group
type GroupMemberRole string

const (
	RoleAdmin  GroupMemberRole = "ADMIN"
	RoleMember GroupMemberRole = "MEMBER"
)

// GroupMemberStatus represents a member's approval state within a group
type GroupMemberStatus string

const (
	MemberStatusActive  GroupMemberStatus = "ACTIVE"
	MemberStatusPending GroupMemberStatus = "PENDING"
)

// Group represents a study group
type Group struct {
	ID          uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string        `gorm:"size:100;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	CreatedByID uint          `gorm:"not null;index" json:"created_by_id"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
	Members     []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// GroupMember represents a user's membership in a group.
// Only ACTIVE members belong to any notification audience.
type GroupMember struct {
	ID       uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID  uint              `gorm:"not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID   uint              `gorm:"not null;uniqueIndex:idx_group_member" json:"user_id"`
	Role     GroupMemberRole   `gorm:"size:10;not null" json:"role"`
	Status   GroupMemberStatus `gorm:"size:10;not null;index" json:"status"`
	JoinedAt time.Time         `gorm:"not null" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// CreateGroupRequest represents the data needed to create a new group
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description"`
}

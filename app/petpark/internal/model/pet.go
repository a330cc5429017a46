package model

import (
	"errors"
	"math"
	"time"
)

// 宠物属性上限，只有心情在互动时被钳制
const (
	MaxMood  = 100
	MinLevel = 1
)

// Pet 宠物状态，对应 pets 表
type Pet struct {
	ID      int64  `db:"id" json:"id"`
	OwnerID int64  `db:"owner_id" json:"owner_id"`
	Name    string `db:"name" json:"name"`

	// 等级成长
	Level      int   `db:"level" json:"level"`
	Experience int64 `db:"experience" json:"experience"`

	// 状态值，约定 0-100
	Mood        int `db:"mood" json:"mood"`
	Hunger      int `db:"hunger" json:"hunger"`
	Stamina     int `db:"stamina" json:"stamina"`
	Cleanliness int `db:"cleanliness" json:"cleanliness"`
	Health      int `db:"health" json:"health"`

	// 外观
	SkinColor              string     `db:"skin_color" json:"skin_color"`
	BackgroundColor        string     `db:"background_color" json:"background_color"`
	LastSkinChangeAt       *time.Time `db:"last_skin_change_at" json:"last_skin_change_at,omitempty"`
	LastBackgroundChangeAt *time.Time `db:"last_background_change_at" json:"last_background_change_at,omitempty"`

	Version   int64     `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewPet 创建新宠物实例
func NewPet(ownerID int64, name string, now time.Time) *Pet {
	return &Pet{
		OwnerID:         ownerID,
		Name:            name,
		Level:           MinLevel,
		Mood:            60,
		Hunger:          60,
		Stamina:         100,
		Cleanliness:     100,
		Health:          100,
		SkinColor:       "default",
		BackgroundColor: "default",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AddMood 增加心情，上限 MaxMood
func (p *Pet) AddMood(delta int) {
	p.Mood = min(MaxMood, p.Mood+delta)
}

// ErrExperienceOverflow 经验累加超出 int64 范围
var ErrExperienceOverflow = errors.New("experience overflow")

// AddExperience 增减经验，不低于 0，不降级；溢出时保持原值
func (p *Pet) AddExperience(delta int64) error {
	if delta > 0 && p.Experience > math.MaxInt64-delta {
		return ErrExperienceOverflow
	}
	p.Experience = max(0, p.Experience+delta)
	return nil
}

// LastAppearanceChange 返回指定外观类型的上次修改时间
func (p *Pet) LastAppearanceChange(kind ColorKind) *time.Time {
	if kind == ColorKindBackground {
		return p.LastBackgroundChangeAt
	}
	return p.LastSkinChangeAt
}

// SetAppearance 修改外观并记录时间
func (p *Pet) SetAppearance(kind ColorKind, color string, now time.Time) {
	t := now
	switch kind {
	case ColorKindBackground:
		p.BackgroundColor = color
		p.LastBackgroundChangeAt = &t
	default:
		p.SkinColor = color
		p.LastSkinChangeAt = &t
	}
}

// Clone 深拷贝
func (p *Pet) Clone() *Pet {
	cp := *p
	if p.LastSkinChangeAt != nil {
		t := *p.LastSkinChangeAt
		cp.LastSkinChangeAt = &t
	}
	if p.LastBackgroundChangeAt != nil {
		t := *p.LastBackgroundChangeAt
		cp.LastBackgroundChangeAt = &t
	}
	return &cp
}

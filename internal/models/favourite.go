// Favourite model definitions

package models

import "time"

// Favourite is one user's bookmark of one recipe. Title, Image, CookTime and Servings are
// display copies taken at bookmark time and may be nil.
type Favourite struct {
	ID        int64     `json:"id"        gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"userId"    gorm:"type:text;not null;index:idx_favourites_user_id"`
	RecipeID  int       `json:"recipeId"  gorm:"not null"`
	Title     *string   `json:"title"     gorm:"type:text"`
	Image     *string   `json:"image"     gorm:"type:text"`
	CookTime  *string   `json:"cookTime"  gorm:"type:text"`
	Servings  *int      `json:"servings"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName pins the relation name used by migrations and queries.
func (Favourite) TableName() string { return "favourites" }

package db_models

type Account struct {
	BaseModel
	Name  string
	Email string `gorm:"unique"`

	Balance *PointsBalance `gorm:"foreignKey:AccountID"`
	Orders  []Order        `gorm:"foreignKey:AccountID"`
}

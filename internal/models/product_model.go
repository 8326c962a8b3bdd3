package models

import "time"

type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	OpisFbInsta string    `db:"opis_fb_insta" json:"opis_fb_insta"`
	Opis        string    `db:"opis" json:"opis"`
	OpisKp      string    `db:"opis_kp" json:"opis_kp"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Caption returns the text used for a social post, checking the
// description variants in priority order and falling back to the name.
func (p *Product) Caption() string {
	for _, candidate := range []string{p.OpisFbInsta, p.Opis, p.OpisKp} {
		if candidate != "" {
			return candidate
		}
	}
	return p.Name
}

type ProductImage struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	FileURL   string    `db:"file_url" json:"file_url"`
	IsMain    bool      `db:"is_main" json:"is_main"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

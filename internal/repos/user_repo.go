package repos

import (
	"github.com/jmoiron/sqlx"

	"hellosession/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(r.DB.Rebind(`INSERT INTO users(id,name,email,password_hash,created_at)
                          VALUES(?,?,?,?,?)`), u.ID, u.Name, u.Email, u.Hash, u.CreatedAt)
	return err
}

// ByEmail returns every user registered under email, compared
// case-insensitively, oldest first. Emails are not unique.
func (r *UserRepo) ByEmail(email string) ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, r.DB.Rebind(`SELECT id,name,email,password_hash,created_at FROM users
                                WHERE LOWER(email)=LOWER(?) ORDER BY created_at, id`), email)
	return out, err
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`SELECT id,name,email,password_hash,created_at FROM users WHERE id=?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Count() (int, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}

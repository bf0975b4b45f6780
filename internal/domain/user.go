package domain

type User struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Hash      string `db:"password_hash"`
	CreatedAt string `db:"created_at"`
}

package store

// Collection names understood by the remote store.
const (
	CollectionProducts = "products"
	CollectionUsers    = "users"
)

// RoleAdmin is the role a user record must carry to manage the catalog.
const RoleAdmin = "admin"

// Product is a catalog record. Price is kept in whole currency units.
type Product struct {
	ID          string `db:"id" json:"id" yaml:"id" validate:"required"`
	Name        string `db:"name" json:"name" yaml:"name" validate:"required"`
	Description string `db:"description" json:"description" yaml:"description"`
	Price       int64  `db:"price" json:"price" yaml:"price" validate:"gte=0"`
	Img         string `db:"img" json:"img" yaml:"img" validate:"omitempty,uri"`
}

// User is the subset of an account record the access guard needs.
type User struct {
	ID   string `db:"id" json:"id" yaml:"id" validate:"required"`
	Role string `db:"role" json:"role" yaml:"role" validate:"required"`
}

package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocommerce-admin/pkg/messaging"
)

// ProductDeletedEvent is emitted after the remote store confirmed a product removal.
type ProductDeletedEvent struct {
	ProductID  string    `json:"product_id"`
	OperatorID string    `json:"operator_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}

func (e ProductDeletedEvent) Subject() string {
	return messaging.ProductsDeletedSubject
}

func (e ProductDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

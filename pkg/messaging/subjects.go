package messaging

const (
	// ProductsSubjects matches every product event published by the admin service.
	ProductsSubjects = "products.>"
	// ProductsDeletedSubject carries events.ProductDeletedEvent.
	ProductsDeletedSubject = "products.deleted"
)

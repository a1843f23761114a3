package query

// Re-export read models so API handlers only import query.
import "github.com/example/storefront/internal/readmodel"

type CustomerReadModel = readmodel.CustomerReadModel
type OrderItemReadModel = readmodel.OrderItemReadModel
type OrderReadModel = readmodel.OrderReadModel
type ReservationReadModel = readmodel.ReservationReadModel

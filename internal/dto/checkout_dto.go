package dto

import "github.com/google/uuid"

type SubscribeRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
	PlanID     uuid.UUID `json:"plan_id"`
}

package payments

import "time"

type Payment struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	UserID        string    `bson:"userId" json:"userId"`
	AppointmentID string    `bson:"appointmentId" json:"appointmentId"`
	Amount        int       `bson:"amount" json:"amount"`
	Method        string    `bson:"method" json:"method"`
	Status        string    `bson:"status" json:"status"`
	TransactionID string    `bson:"transactionId" json:"transactionId"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

type IntentRequest struct {
	AppointmentID string `json:"appointmentId" validate:"required"`
	Method        string `json:"method" validate:"required,oneof=paypal card cash"`
}

package appointments

import "time"

// Appointment references its doctor and patient by id; the doctor's
// availability template is resolved through the doctors service, never
// embedded here.
type Appointment struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	PatientID string    `bson:"patientId" json:"patientId"`
	DoctorID  string    `bson:"doctorId" json:"doctorId"`
	Date      string    `bson:"date" json:"date"`
	Time      string    `bson:"time" json:"time"`
	Type      string    `bson:"type" json:"type"`
	Status    string    `bson:"status" json:"status"`
	Fee       int       `bson:"fee" json:"fee"`
	Symptoms  string    `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	SlotHeld  bool      `bson:"slotHeld" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateRequest struct {
	DoctorID   string `json:"doctorId" validate:"required"`
	Date       string `json:"date" validate:"required,date"`
	Time       string `json:"time" validate:"required,clock12"`
	Type       string `json:"type" validate:"required,oneof=consultation followup emergency"`
	Symptoms   string `json:"symptoms" validate:"omitempty,max=2000"`
	PaymentRef string `json:"paymentRef" validate:"omitempty,max=64"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

package reviews

import "time"

type Review struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	DoctorID      string    `bson:"doctorId" json:"doctorId"`
	PatientID     string    `bson:"patientId" json:"patientId"`
	AppointmentID string    `bson:"appointmentId" json:"appointmentId"`
	PatientName   string    `bson:"patientName" json:"patientName"`
	Rating        int       `bson:"rating" json:"rating"`
	Comment       string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

type CreateRequest struct {
	AppointmentID string `json:"appointmentId" validate:"required"`
	Rating        int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment       string `json:"comment" validate:"omitempty,max=2000"`
}

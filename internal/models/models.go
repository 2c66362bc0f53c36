package models

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"

	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"

	AppointmentTypeConsultation = "consultation"
	AppointmentTypeFollowUp     = "followup"
	AppointmentTypeEmergency    = "emergency"

	PaymentMethodPayPal = "paypal"
	PaymentMethodCard   = "card"
	PaymentMethodCash   = "cash"

	PaymentStatusCompleted = "completed"
	PaymentStatusRefunded  = "refunded"

	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

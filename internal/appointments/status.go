package appointments

import "github.com/dhairyajangir/CuraLink/internal/models"

// Status transitions. Completed and cancelled are terminal.
//
//	pending -> confirmed -> completed
//	pending -> cancelled
//	confirmed -> cancelled
var transitions = map[string][]string{
	models.AppointmentStatusPending:   {models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled},
	models.AppointmentStatusConfirmed: {models.AppointmentStatusCompleted, models.AppointmentStatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

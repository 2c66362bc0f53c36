package doctors

import (
	"time"

	"github.com/dhairyajangir/CuraLink/internal/availability"
)

// Doctor is the doctor view of a user document. The availability template is
// stored here and nowhere else; appointments reference doctors by id only.
type Doctor struct {
	ID              string            `bson:"_id,omitempty" json:"id"`
	Name            string            `bson:"name" json:"name"`
	Email           string            `bson:"email" json:"email"`
	PasswordHash    string            `bson:"passwordHash,omitempty" json:"-"`
	Role            string            `bson:"role" json:"role"`
	Phone           string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Specialty       string            `bson:"specialty" json:"specialty"`
	Experience      int               `bson:"experience" json:"experience"`
	Qualification   string            `bson:"qualification" json:"qualification"`
	Bio             string            `bson:"bio" json:"bio"`
	ConsultationFee int               `bson:"consultationFee" json:"consultationFee"`
	Rating          float64           `bson:"rating" json:"rating"`
	TotalReviews    int               `bson:"totalReviews" json:"totalReviews"`
	IsApproved      bool              `bson:"isApproved" json:"isApproved"`
	Hospital        string            `bson:"hospital,omitempty" json:"hospital,omitempty"`
	Availability    availability.Week `bson:"availability" json:"availability"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
}

type UpdateAvailabilityRequest struct {
	Availability availability.Week `json:"availability" validate:"required,min=1,max=7"`
}

type ListFilter struct {
	Specialty      string
	IncludePending bool
}

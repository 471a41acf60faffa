package venues

import (
	"net/http"
	"time"

	"venuebook/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrVenueNotFound = apperr.New("venue_not_found", http.StatusNotFound, "venue not found")

type Venue struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Address          string    `gorm:"type:text" json:"address,omitempty"`
	ContactEmail     string    `gorm:"type:varchar(255)" json:"contact_email,omitempty"`
	RequiresApproval bool      `gorm:"not null" json:"requires_approval"`
	// DepositAmount is charged per reservation, in minor units; 0 means none
	DepositAmount    int64     `gorm:"not null;default:0" json:"deposit_amount"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (v *Venue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Settings is the slice of a venue the admission path reads on every request
type Settings struct {
	VenueID          uuid.UUID `json:"venue_id"`
	RequiresApproval bool      `json:"requires_approval"`
	DepositAmount    int64     `json:"deposit_amount"`
	ContactEmail     string    `json:"contact_email,omitempty"`
}

func (v *Venue) Settings() Settings {
	return Settings{
		VenueID:          v.ID,
		RequiresApproval: v.RequiresApproval,
		DepositAmount:    v.DepositAmount,
		ContactEmail:     v.ContactEmail,
	}
}

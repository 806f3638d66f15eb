package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

// TypeAppointment tags every notification produced by the appointment workflow.
const TypeAppointment = "appointment"

const defaultActor = "el profesional"

// Intent is a notification that has been decided but not necessarily
// stored yet. It is the payload carried by outbox events.
type Intent struct {
	AppointmentID string `json:"appointment_id"`
	UserID        string `json:"user_id"`
	Title         string `json:"titulo"`
	Body          string `json:"mensaje"`
	Type          string `json:"tipo"`
}

// Details are the values interpolated into appointment messages.
type Details struct {
	Date     string
	Time     string
	Actor    string
	MeetLink string
}

// Compose builds the patient-facing message for a status the workflow moved
// an appointment into. ok is false for statuses that carry no message.
func Compose(status string, d Details) (title, body string, ok bool) {
	actor := strings.TrimSpace(d.Actor)
	if actor == "" {
		actor = defaultActor
	}

	switch status {
	case "confirmed":
		body = fmt.Sprintf("Tu cita del %s a las %s con %s ha sido confirmada.", d.Date, d.Time, actor)
		if link := strings.TrimSpace(d.MeetLink); link != "" {
			body += " Enlace: " + link
		}
		return "Cita Confirmada", body, true
	case "cancelled":
		return "Cita Rechazada",
			fmt.Sprintf("Tu cita del %s a las %s con %s ha sido rechazada.", d.Date, d.Time, actor),
			true
	case "no-show":
		return "Inasistencia Registrada",
			fmt.Sprintf("Se registró tu inasistencia a la cita del %s a las %s con %s.", d.Date, d.Time, actor),
			true
	}
	return "", "", false
}

// Notification materialises the intent under id. Reusing the outbox event
// id keeps a retried insert from producing a second row.
func (i Intent) Notification(id string, now time.Time) *models.Notification {
	typ := i.Type
	if typ == "" {
		typ = TypeAppointment
	}
	return &models.Notification{
		ID:        id,
		UserID:    i.UserID,
		Title:     i.Title,
		Body:      i.Body,
		Type:      typ,
		CreatedAt: now,
	}
}

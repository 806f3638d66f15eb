package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	d := Details{Date: "2024-06-01", Time: "10:00", Actor: "Dra. Pérez"}

	title, body, ok := Compose("confirmed", d)
	assert.True(t, ok)
	assert.Equal(t, "Cita Confirmada", title)
	assert.Equal(t, "Tu cita del 2024-06-01 a las 10:00 con Dra. Pérez ha sido confirmada.", body)

	title, body, ok = Compose("cancelled", d)
	assert.True(t, ok)
	assert.Equal(t, "Cita Rechazada", title)
	assert.Contains(t, body, "rechazada")

	title, _, ok = Compose("no-show", d)
	assert.True(t, ok)
	assert.Equal(t, "Inasistencia Registrada", title)

	_, _, ok = Compose("completed", d)
	assert.False(t, ok)
}

func TestComposeDefaultsActorAndAppendsLink(t *testing.T) {
	_, body, _ := Compose("confirmed", Details{Date: "2024-06-01", Time: "10:00", MeetLink: "https://meet/x"})

	assert.Equal(t, "Tu cita del 2024-06-01 a las 10:00 con el profesional ha sido confirmada. Enlace: https://meet/x", body)
}

func TestIntentNotification(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	in := Intent{UserID: "P1", Title: "Cita Confirmada", Body: "b"}

	n := in.Notification("evt-1", now)

	assert.Equal(t, "evt-1", n.ID)
	assert.Equal(t, "P1", n.UserID)
	assert.Equal(t, TypeAppointment, n.Type)
	assert.False(t, n.Read)
	assert.Equal(t, now, n.CreatedAt)
}

package email

import (
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRenderer_RegistrationConfirmation(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.RegistrationConfirmationEmailData{
		Email:       "alice@example.com",
		Name:        "Alice",
		EventTitle:  "Go <Meetup>",
		StartTime:   time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC),
		Location:    "Hall A",
		Description: "Lightning talks",
	}

	subject, html, text, err := r.Render("registration_confirmation", data)
	require.NoError(t, err)
	assert.Equal(t, "You're registered for Go <Meetup>", subject)

	assert.Contains(t, html, "Go &lt;Meetup&gt;", "html body must be escaped")
	assert.Contains(t, html, "Sun, 01 Jun 2025 18:30 UTC")
	assert.Contains(t, html, "Hall A")

	assert.Contains(t, text, "Hi Alice,")
	assert.Contains(t, text, "Where: Hall A")
	assert.Contains(t, text, "Lightning talks")
}

func TestTemplateRenderer_OptionalFields(t *testing.T) {
	r := NewTemplateRenderer()
	_, html, text, err := r.Render("registration_confirmation", &domain.RegistrationConfirmationEmailData{
		Name:       "Bob",
		EventTitle: "Open Day",
		StartTime:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotContains(t, text, "Where:")
	assert.NotContains(t, html, "Where")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("does_not_exist", nil)
	assert.Error(t, err)
}

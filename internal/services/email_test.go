package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html, text: text})
	return nil
}

type fakeRenderer struct {
	lastTemplate string
	lastData     any
	err          error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	f.lastTemplate = name
	f.lastData = data
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}

func TestEmailService_SendRegistrationConfirmation(t *testing.T) {
	ctx := context.Background()
	data := &domain.RegistrationConfirmationEmailData{Email: "alice@example.com", Name: "Alice", EventTitle: "Go Meetup"}

	t.Run("renders and sends", func(t *testing.T) {
		mailer, renderer := &fakeMailer{}, &fakeRenderer{}
		svc := NewEmailService(mailer, renderer, testLogger)
		require.NoError(t, svc.SendRegistrationConfirmation(ctx, data))
		assert.Equal(t, "registration_confirmation", renderer.lastTemplate)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, sentMail{to: "alice@example.com", subject: "subject", html: "<p>html</p>", text: "text"}, mailer.sent[0])
	})

	t.Run("render failure", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewEmailService(mailer, &fakeRenderer{err: errors.New("bad template")}, testLogger)
		err := svc.SendRegistrationConfirmation(ctx, data)
		require.Error(t, err)
		assert.Empty(t, mailer.sent)
	})

	t.Run("send failure", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{err: errors.New("throttled")}, &fakeRenderer{}, testLogger)
		err := svc.SendRegistrationConfirmation(ctx, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})

	t.Run("nil data", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, testLogger)
		assert.Error(t, svc.SendRegistrationConfirmation(ctx, nil))
	})
}

func TestEmailNotifier_NotifyRegistered(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()
	u := domain.NewUser("alice@example.com", "Alice", "Doe", "h", "s", testNow, testNow)
	require.NoError(t, users.Create(ctx, u))

	renderer := &fakeRenderer{}
	mailer := &fakeMailer{}
	notifier := NewEmailNotifier(users, NewEmailService(mailer, renderer, testLogger))

	start := testNow.Add(24 * time.Hour)
	event := &domain.Event{ID: "ev-1", Title: "Go Meetup", Location: "Hall A", StartTime: start}
	require.NoError(t, notifier.NotifyRegistered(ctx, event, &domain.EventRegistration{EventID: "ev-1", UserID: u.ID}))

	data, ok := renderer.lastData.(*domain.RegistrationConfirmationEmailData)
	require.True(t, ok)
	assert.Equal(t, "Alice Doe", data.Name)
	assert.Equal(t, "Go Meetup", data.EventTitle)
	assert.Equal(t, start, data.StartTime)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)

	err := notifier.NotifyRegistered(ctx, event, &domain.EventRegistration{EventID: "ev-1", UserID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

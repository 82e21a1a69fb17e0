package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMSSender_PostsJSONWithBearer(t *testing.T) {
	var got smsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSMSSender(srv.URL, "key-1", "SPACEBOOK")
	require.NoError(t, s.Send(context.Background(), Message{Recipient: "+15550001", Body: "confirmed"}))
	assert.Equal(t, smsRequest{Recipient: "+15550001", SenderName: "SPACEBOOK", Message: "confirmed"}, got)
}

func TestSMSSender_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSMSSender(srv.URL, "key", "X")
	err := s.Send(context.Background(), Message{Recipient: "+1", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	assert.ErrorIs(t, s.Send(context.Background(), Message{Body: "b"}), ErrNoRecipient)
}

func TestSMTPSender_BuildsMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 2525, From: "no-reply@spacebook.local"})
	var addr string
	var to []string
	var raw []byte
	s.send = func(a string, auth smtp.Auth, from string, rcpt []string, msg []byte) error {
		addr, to, raw = a, rcpt, msg
		assert.Nil(t, auth)
		return nil
	}

	require.NoError(t, s.Send(context.Background(), Message{Recipient: "ada@example.com", Subject: "Hi", Body: "Body"}))
	assert.Equal(t, "mail.local:2525", addr)
	assert.Equal(t, []string{"ada@example.com"}, to)
	assert.Contains(t, string(raw), "Subject: Hi\r\n")
	assert.Contains(t, string(raw), "\r\n\r\nBody")

	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 try later") }
	assert.Error(t, s.Send(context.Background(), Message{Recipient: "ada@example.com"}))
}

func TestSMTPSender_RejectsHeaderLineBreaks(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 2525, From: "no-reply@spacebook.local"})
	var raw []byte
	calls := 0
	s.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		calls++
		raw = msg
		return nil
	}

	err := s.Send(context.Background(), Message{Recipient: "ada@example.com\r\nBcc: eve@example.com", Subject: "Hi"})
	assert.ErrorIs(t, err, ErrHeaderInjection)
	assert.Zero(t, calls)

	require.NoError(t, s.Send(context.Background(), Message{Recipient: "ada@example.com", Subject: "Hi\r\nBcc: eve@example.com", Body: "Body"}))
	assert.Contains(t, string(raw), "Subject: Hi Bcc: eve@example.com\r\n")
	assert.NotContains(t, string(raw), "\r\nBcc:")
}

type fakeFCM struct {
	last *messaging.Message
	err  error
}

func (f *fakeFCM) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.last = m
	return "projects/x/messages/1", f.err
}

func TestFCMSender_Send(t *testing.T) {
	client := &fakeFCM{}
	s := &FCMSender{client: client}

	require.NoError(t, s.Send(context.Background(), Message{Recipient: "tok", Subject: "T", Body: "B", Data: map[string]string{"booking_id": "3"}}))
	require.NotNil(t, client.last)
	assert.Equal(t, "tok", client.last.Token)
	assert.Equal(t, "T", client.last.Notification.Title)
	assert.Equal(t, "3", client.last.Data["booking_id"])

	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipient)

	client.err = errors.New("unregistered")
	assert.Error(t, s.Send(context.Background(), Message{Recipient: "tok"}))
}

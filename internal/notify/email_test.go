package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/venue-platform/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "test@example.com"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "test@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Reservations", sender.fromName)
}

type stubSendGrid struct {
	got    *mail.SGMailV3
	status int
	err    error
}

func (s *stubSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.got = email
	if s.err != nil {
		return nil, s.err
	}
	return &rest.Response{StatusCode: s.status}, nil
}

func TestSendGridSender_Send(t *testing.T) {
	api := &stubSendGrid{status: 202}
	sender := &SendGridSender{client: api, fromEmail: "bookings@venue.test", fromName: "The Club", logger: logging.Discard()}

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "host@venue.test", Subject: "New booking", Body: "details"}))
	require.NotNil(t, api.got)
	assert.Equal(t, "New booking", api.got.Subject)
	assert.Equal(t, "bookings@venue.test", api.got.From.Address)

	api.status = 401
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "host@venue.test"}))

	api.err = errors.New("dial tcp: timeout")
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "host@venue.test"}))
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "recipient@example.com"}))
}

type stubSES struct {
	got *sesv2.SendEmailInput
	err error
}

func (s *stubSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	api := &stubSES{}
	sender := NewSESSender(api, SESConfig{FromEmail: "bookings@venue.test"}, logging.Discard())
	require.NotNil(t, sender)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{
		To:      "host@venue.test",
		Subject: "New booking",
		Body:    "plain",
		HTML:    "<p>html</p>",
	}))
	assert.Equal(t, "Reservations <bookings@venue.test>", aws.ToString(api.got.FromEmailAddress))
	assert.Equal(t, []string{"host@venue.test"}, api.got.Destination.ToAddresses)
	assert.Equal(t, "plain", aws.ToString(api.got.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(api.got.Content.Simple.Body.Html.Data))

	api.err = errors.New("throttled")
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "host@venue.test", Subject: "x"}))
}

func TestNewSESSender_NilWithoutClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

func TestStubEmailSender_Send(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "recipient@example.com"}))
}

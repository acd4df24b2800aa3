package email

import (
	"errors"
	"testing"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	failures int
	calls    int
	last     *gomail.Message
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.calls++
	r.last = m[0]
	if r.calls <= r.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func newTestService(t *testing.T, sender Sender) *emailServiceImpl {
	svc, err := NewEmailServiceWithSender(config.SMTPConfig{Host: "smtp.test", From: "hr@office.test", FromName: "HR"}, sender)
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.backoff = 0
	return impl
}

func TestSendLeaveDecision_RendersTemplate(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestService(t, sender)

	err := svc.SendLeaveDecision("ama@office.test", LeaveDecisionData{
		RecipientName: "Ama",
		LeaveType:     "annual",
		StartDate:     "2024-03-04",
		EndDate:       "2024-03-06",
		Status:        "approved",
		Comments:      "ok",
	})
	require.NoError(t, err)
	require.Equal(t, 1, sender.calls)

	assert.Equal(t, []string{"ama@office.test"}, sender.last.GetHeader("To"))
	assert.Equal(t, []string{"Your leave request was approved"}, sender.last.GetHeader("Subject"))
	assert.Equal(t, []string{`"HR" <hr@office.test>`}, sender.last.GetHeader("From"))
}

func TestSendHTML_RetriesThenFails(t *testing.T) {
	sender := &recordingSender{failures: 5}
	svc := newTestService(t, sender)

	err := svc.SendAutoCheckout("ama@office.test", AutoCheckoutData{RecipientName: "Ama", Date: "2024-03-04"})
	assert.Error(t, err)
	assert.Equal(t, maxRetries, sender.calls)
}

func TestSendHTML_RecoversOnRetry(t *testing.T) {
	sender := &recordingSender{failures: 1}
	svc := newTestService(t, sender)

	err := svc.SendLeaveApprovalRequest("kofi@office.test", LeaveApprovalRequestData{RecipientName: "Kofi", EmployeeName: "Ama"})
	assert.NoError(t, err)
	assert.Equal(t, 2, sender.calls)
}

func TestSendHTML_SkipsWithoutHost(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewEmailServiceWithSender(config.SMTPConfig{}, sender)
	require.NoError(t, err)

	require.NoError(t, svc.SendAutoCheckout("ama@office.test", AutoCheckoutData{}))
	assert.Zero(t, sender.calls)
}

package mocks

import (
	"github.com/cradoe/carvest/internal/smtp"
	"github.com/stretchr/testify/mock"
)

var _ smtp.MailerInterface = (*MockMailer)(nil)

// MockMailer records outgoing emails. Send may be called from background
// tasks, so tests should wait on the helper WaitGroup before asserting.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(recipient string, data any, patterns ...string) error {
	args := m.Called(recipient, data, patterns)
	return args.Error(0)
}

// ExpectTemplate expects exactly one email rendered from template.
func (m *MockMailer) ExpectTemplate(recipient, template string, err error) *mock.Call {
	return m.On("Send", recipient, mock.Anything, []string{template}).Return(err).Once()
}

package strategy

import (
	"context"
	"errors"
	"testing"

	"email-datagen/internal/entity"
	"email-datagen/internal/executor/dto"
	"email-datagen/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, emailType entity.EmailType, req *dto.SendRequest) (*dto.SendResponse, error) {
	args := m.Called(ctx, emailType, req)
	resp, _ := args.Get(0).(*dto.SendResponse)
	return resp, args.Error(1)
}

func TestPhishingStrategy_UsesTemplate(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, entity.EmailTypePhishing, mock.MatchedBy(func(r *dto.SendRequest) bool {
		return r.TemplateType == "urgent" && r.Count == 3 && r.ConfigName == "corp"
	})).Return(&dto.SendResponse{Success: true, Sent: 3}, nil)

	s := NewPhishingStrategy(sender, logger.NewNop())
	res, err := s.Dispatch(context.Background(), &DispatchRequest{
		Recipients: []string{"a@example.com"},
		Count:      3,
		ConfigName: "corp",
		Payload:    entity.PhishingPayload{TemplateType: "urgent"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Sent)
	assert.Equal(t, "corp", res.ConfigName)
	sender.AssertExpectations(t)
}

func TestGTUBEStrategy_ForcesSingleMessage(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, entity.EmailTypeGTUBE, mock.MatchedBy(func(r *dto.SendRequest) bool {
		return r.Count == 1
	})).Return(&dto.SendResponse{Success: true, Sent: 1}, nil)

	s := NewGTUBEStrategy(sender, logger.NewNop())
	_, err := s.Dispatch(context.Background(), &DispatchRequest{Count: 10, Payload: entity.GTUBEPayload{}})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestCustomStrategy_CopiesFields(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, entity.EmailTypeCustom, mock.MatchedBy(func(r *dto.SendRequest) bool {
		return r.Subject == "Hi" && r.Body == "<p>x</p>" && r.TextBody == "x" && r.AttachmentType == ".pdf" && r.DisplayName == "IT"
	})).Return(&dto.SendResponse{Success: true, Sent: 1}, nil)

	s := NewCustomStrategy(sender, logger.NewNop())
	_, err := s.Dispatch(context.Background(), &DispatchRequest{Count: 1, Payload: entity.CustomPayload{
		Subject: "Hi", Body: "<p>x</p>", TextBody: "x", DisplayName: "IT", AttachmentType: ".pdf",
	}})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestCustomStrategy_RejectsWrongPayload(t *testing.T) {
	sender := new(mockSender)
	s := NewCustomStrategy(sender, logger.NewNop())

	_, err := s.Dispatch(context.Background(), &DispatchRequest{Count: 1, Payload: entity.EICARPayload{}})
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, entity.EmailTypeCustom, de.EmailType)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestStrategy_WrapsTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	sender := new(mockSender)
	sender.On("Send", mock.Anything, entity.EmailTypeEICAR, mock.Anything).Return(nil, boom)

	_, err := NewEICARStrategy(sender, logger.NewNop()).Dispatch(context.Background(), &DispatchRequest{Count: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "eicar dispatch failed")
}

func TestStrategy_ReportsPartialFailure(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, entity.EmailTypeCynic, mock.Anything).
		Return(&dto.SendResponse{Success: false, Sent: 1, Failed: 2, Errors: []string{"quota"}}, nil)

	res, err := NewCynicStrategy(sender, logger.NewNop()).Dispatch(context.Background(), &DispatchRequest{Count: 3})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []string{"quota"}, res.Errors)
}

func TestDefaultStrategies_CoverEveryType(t *testing.T) {
	got := map[entity.EmailType]bool{}
	for _, s := range DefaultStrategies(new(mockSender), logger.NewNop()) {
		got[s.GetType()] = true
	}
	for _, et := range entity.EmailTypes {
		assert.True(t, got[et], "missing strategy for %s", et)
	}
}

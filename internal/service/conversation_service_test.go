package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skillsocket/internal/domain"
	"skillsocket/internal/service"
)

func msgAt(id string, from, to int64, content string, at time.Time) *domain.Message {
	return &domain.Message{ID: id, From: from, To: to, Content: content, CreatedAt: at}
}

func TestListForUserKeepsNewestPerPartner(t *testing.T) {
	msgs := new(MockMessageRepo)
	users := new(MockUserRepo)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// store returns newest first
	msgs.On("ListForUser", mock.Anything, int64(1)).Return([]*domain.Message{
		msgAt("m3", 1, 2, "latest", base.Add(3*time.Minute)),
		msgAt("m2", 2, 1, "reply", base.Add(2*time.Minute)),
		msgAt("m1", 1, 2, "first", base.Add(1*time.Minute)),
	}, nil)
	users.On("GetByID", mock.Anything, int64(2)).Return(testUser(2, "Bob"), nil)

	svc := service.NewConversationService(msgs, users)
	summaries, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, summaries, 1, "exactly one summary per partner")
	s := summaries[0]
	assert.Equal(t, "1_2", s.ID)
	assert.Equal(t, int64(2), s.Participant.ID)
	assert.Equal(t, "latest", s.LastMessage.Content)
	assert.Equal(t, int64(1), s.LastMessage.From)

	// partner profile resolved once, not per message
	users.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestListForUserMultiplePartners(t *testing.T) {
	msgs := new(MockMessageRepo)
	users := new(MockUserRepo)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs.On("ListForUser", mock.Anything, int64(1)).Return([]*domain.Message{
		msgAt("m4", 3, 1, "from carol", base.Add(4*time.Minute)),
		msgAt("m3", 1, 2, "to bob", base.Add(3*time.Minute)),
		msgAt("m2", 2, 1, "from bob", base.Add(2*time.Minute)),
		msgAt("m1", 1, 3, "to carol", base.Add(1*time.Minute)),
	}, nil)
	users.On("GetByID", mock.Anything, int64(2)).Return(testUser(2, "Bob"), nil)
	users.On("GetByID", mock.Anything, int64(3)).Return(testUser(3, "Carol"), nil)

	svc := service.NewConversationService(msgs, users)
	summaries, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byPartner := map[int64]domain.ConversationSummary{}
	for _, s := range summaries {
		byPartner[s.Participant.ID] = s
	}
	assert.Equal(t, "from carol", byPartner[3].LastMessage.Content)
	assert.Equal(t, "to bob", byPartner[2].LastMessage.Content)
}

func TestListForUserSelfMessage(t *testing.T) {
	msgs := new(MockMessageRepo)
	users := new(MockUserRepo)

	msgs.On("ListForUser", mock.Anything, int64(1)).Return([]*domain.Message{
		msgAt("m1", 1, 1, "note to self", time.Now()),
	}, nil)
	users.On("GetByID", mock.Anything, int64(1)).Return(testUser(1, "Alice"), nil)

	svc := service.NewConversationService(msgs, users)
	summaries, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)

	// partner resolves to the requester per the from == to tie-break
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].Participant.ID)
	assert.Equal(t, "1_1", summaries[0].ID)
}

func TestListForUserSkipsRemovedPartner(t *testing.T) {
	msgs := new(MockMessageRepo)
	users := new(MockUserRepo)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs.On("ListForUser", mock.Anything, int64(1)).Return([]*domain.Message{
		msgAt("m2", 9, 1, "ghost", base.Add(time.Minute)),
		msgAt("m1", 2, 1, "hello", base),
	}, nil)
	users.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.ErrNotFound)
	users.On("GetByID", mock.Anything, int64(2)).Return(testUser(2, "Bob"), nil)

	svc := service.NewConversationService(msgs, users)
	summaries, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].Participant.ID)
}

func TestListForUserEmpty(t *testing.T) {
	msgs := new(MockMessageRepo)
	users := new(MockUserRepo)
	msgs.On("ListForUser", mock.Anything, int64(1)).Return([]*domain.Message{}, nil)

	svc := service.NewConversationService(msgs, users)
	summaries, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

package anonmsg

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/Vasu1712/hushgroup-backend/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, receiverID string, event models.InboxEvent) error {
	args := m.Called(ctx, receiverID, event)
	return args.Error(0)
}

const (
	studyID = "8f3c2a4e-0d5b-4c1e-9a7f-1b2c3d4e5f60"
	chessID = "1a2b3c4d-5e6f-4a1b-8c2d-3e4f5a6b7c8d"
)

type fixture struct {
	router   *Router
	groups   *memory.GroupStore
	messages *memory.MessageStore
}

func newFixture(t *testing.T, notifier Notifier) fixture {
	t.Helper()
	ctx := context.Background()
	groups := memory.NewGroupStore()
	messages := memory.NewMessageStore()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, groups.InsertGroup(ctx, models.Group{
		ID: studyID, Name: "Study", InviteCode: "A1B2C3D4",
		Members: []string{"alice", "bob", "carol"}, CreatedBy: "alice", CreatedAt: base,
	}))
	require.NoError(t, groups.InsertGroup(ctx, models.Group{
		ID: chessID, Name: "Chess", InviteCode: "0F0F0F0F",
		Members: []string{"dave"}, CreatedBy: "dave", CreatedAt: base,
	}))

	return fixture{
		router:   NewRouter(groups, messages, notifier, zerolog.Nop()),
		groups:   groups,
		messages: messages,
	}
}

func TestMessageHasNoSenderField(t *testing.T) {
	typ := reflect.TypeOf(models.Message{})
	var fields []string
	for i := 0; i < typ.NumField(); i++ {
		fields = append(fields, typ.Field(i).Name)
	}
	assert.ElementsMatch(t, []string{"ID", "GroupID", "ReceiverID", "Text", "CreatedAt"}, fields)
}

func TestSend_PersistsWithoutSender(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	id, err := f.router.Send(ctx, "alice", "bob", studyID, "see you at the library")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	all := f.messages.All()
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, studyID, all[0].GroupID)
	assert.Equal(t, "bob", all[0].ReceiverID)
	assert.Equal(t, "see you at the library", all[0].Text)

	raw, err := json.Marshal(all)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice")

	inbox, err := f.router.GetInbox(ctx, "bob")
	require.NoError(t, err)
	raw, err = json.Marshal(inbox)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice")
}

func TestSend_Errors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		sender   string
		receiver string
		group    string
		text     string
		want     error
	}{
		{"unknown group", "alice", "bob", "no-such-group", "hi", apperr.ErrNotFound},
		{"sender not a member", "dave", "bob", studyID, "hi", apperr.ErrForbidden},
		{"receiver not a member", "alice", "dave", studyID, "hi", apperr.ErrInvalidReceiver},
		{"self message", "alice", "alice", studyID, "hi", apperr.ErrSelfMessage},
		{"empty text", "alice", "bob", studyID, "", apperr.ErrInvalidMessage},
		{"text too long", "alice", "bob", studyID, strings.Repeat("x", 1001), apperr.ErrInvalidMessage},
		{"text with NUL", "alice", "bob", studyID, "hi\x00there", apperr.ErrInvalidMessage},
		// membership is checked before text
		{"forbidden wins over bad text", "dave", "bob", studyID, "", apperr.ErrForbidden},
		{"self wins over bad text", "bob", "bob", studyID, "", apperr.ErrSelfMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.router.Send(ctx, tt.sender, tt.receiver, tt.group, tt.text)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, f.messages.All())
}

func TestSend_TextLimits(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.router.Send(ctx, "alice", "bob", studyID, strings.Repeat("x", 1000))
	assert.NoError(t, err)

	// 1000 runes, more than 1000 bytes
	_, err = f.router.Send(ctx, "alice", "bob", studyID, strings.Repeat("é", 1000))
	assert.NoError(t, err)

	_, err = f.router.Send(ctx, "alice", "bob", studyID, "x")
	assert.NoError(t, err)
}

func TestSend_CancelledContextStoresNothing(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.router.Send(ctx, "alice", "bob", studyID, "hi")
	require.Error(t, err)
	assert.Empty(t, f.messages.All())
}

func TestGetInbox_FiltersAndOrders(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	clock := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	f.router.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	send := func(sender, receiver, text string) {
		t.Helper()
		_, err := f.router.Send(ctx, sender, receiver, studyID, text)
		require.NoError(t, err)
	}
	send("alice", "bob", "first")
	send("carol", "alice", "for alice")
	send("carol", "bob", "second")
	send("alice", "bob", "third")

	bobInbox, err := f.router.GetInbox(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobInbox, 3)
	assert.Equal(t, "third", bobInbox[0].Text)
	assert.Equal(t, "second", bobInbox[1].Text)
	assert.Equal(t, "first", bobInbox[2].Text)
	for _, e := range bobInbox {
		assert.Equal(t, "Study", e.GroupName)
		assert.Equal(t, "A1B2C3D4", e.GroupInviteCode)
		assert.Equal(t, studyID, e.GroupID)
	}

	aliceInbox, err := f.router.GetInbox(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceInbox, 1)
	assert.Equal(t, "for alice", aliceInbox[0].Text)

	carolInbox, err := f.router.GetInbox(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, carolInbox)
	assert.Empty(t, carolInbox)
}

func TestGetInbox_UnknownGroup(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.messages.InsertMessage(ctx, models.Message{
		ID: "m1", GroupID: "vanished", ReceiverID: "bob", Text: "orphan",
		CreatedAt: time.Now().UTC(),
	}))

	inbox, err := f.router.GetInbox(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Unknown Group", inbox[0].GroupName)
	assert.Empty(t, inbox[0].GroupInviteCode)
}

func TestSend_NotifiesReceiver(t *testing.T) {
	notifier := new(mockNotifier)
	notifier.On("Notify", mock.Anything, "bob", mock.MatchedBy(func(ev models.InboxEvent) bool {
		return ev.GroupID == studyID && ev.MessageID != "" && !ev.CreatedAt.IsZero()
	})).Return(nil).Once()

	f := newFixture(t, notifier)
	id, err := f.router.Send(context.Background(), "alice", "bob", studyID, "ping")
	require.NoError(t, err)

	notifier.AssertExpectations(t)
	ev := notifier.Calls[0].Arguments.Get(2).(models.InboxEvent)
	assert.Equal(t, id, ev.MessageID)
}

func TestSend_NotifyFailureDoesNotFailSend(t *testing.T) {
	notifier := new(mockNotifier)
	notifier.On("Notify", mock.Anything, "bob", mock.Anything).Return(errors.New("hub closed"))

	f := newFixture(t, notifier)
	_, err := f.router.Send(context.Background(), "alice", "bob", studyID, "ping")
	require.NoError(t, err)
	assert.Len(t, f.messages.All(), 1)
}

func TestSend_NoNotificationOnRejectedSend(t *testing.T) {
	notifier := new(mockNotifier)
	f := newFixture(t, notifier)

	_, err := f.router.Send(context.Background(), "alice", "alice", studyID, "ping")
	require.ErrorIs(t, err, apperr.ErrSelfMessage)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

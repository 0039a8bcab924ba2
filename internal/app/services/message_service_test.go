package services

import (
	"context"
	"testing"
	"time"

	"github.com/campusconnect/backend/internal/app/models"
	"github.com/campusconnect/backend/internal/pkg/apperrors"
	"github.com/campusconnect/backend/internal/pkg/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomIDIsSymmetric(t *testing.T) {
	assert.Equal(t, models.RoomID(3, 17), models.RoomID(17, 3))
	assert.Equal(t, "3_17", models.RoomID(17, 3))
	assert.Equal(t, "5_5", models.RoomID(5, 5))
}

func TestSendMessage(t *testing.T) {
	users := newFakeUsers()
	alice := users.add("alice", models.RoleStudent, 1)
	bob := users.add("bob", models.RoleStudent, 1)
	msgs := &fakeMessages{}
	svc := NewMessageService(msgs, users, zerolog.Nop())
	ctx := context.Background()

	m, err := svc.SendMessage(ctx, alice.ID, bob.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.RoomID(alice.ID, bob.ID), m.RoomID)
	assert.Equal(t, models.MessageTypeText, m.MessageType)

	_, err = svc.SendMessage(ctx, alice.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.SendMessage(ctx, alice.ID, 999, "hi")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	history, err := svc.GetHistory(ctx, Actor{UserID: bob.ID}, alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)
}

func TestSendPushesToConnectedReceiver(t *testing.T) {
	users := newFakeUsers()
	alice := users.add("alice", models.RoleStudent, 1)
	bob := users.add("bob", models.RoleStudent, 1)
	notifier := &recordingNotifier{online: map[int64]bool{bob.ID: true}}
	svc := NewMessageService(&fakeMessages{}, users, zerolog.Nop())
	svc.SetNotifier(notifier)

	_, err := svc.Send(context.Background(), Actor{UserID: alice.ID}, bob.ID, "ping")
	require.NoError(t, err)
	require.Len(t, notifier.direct, 1)
	assert.Equal(t, websocket.EventReceiveMessage, notifier.direct[0].event)
	assert.Equal(t, bob.ID, notifier.direct[0].target)
}

func TestGetConnectionsRanking(t *testing.T) {
	users := newFakeUsers()
	me := users.add("me", models.RoleStudent, 1)
	zed := users.add("zed", models.RoleStudent, 1)
	amy := users.add("amy", models.RoleStudent, 1)
	kim := users.add("kim", models.RoleStudent, 1)
	bea := users.add("bea", models.RoleStudent, 1)
	alum := users.add("alum", models.RoleAlumni, 1)
	far := users.add("far", models.RoleStudent, 2)

	now := time.Now()
	msgs := &fakeMessages{last: []models.LastMessage{
		{CounterpartID: zed.ID, Content: "old", SenderID: me.ID, CreatedAt: now.Add(-time.Hour)},
		{CounterpartID: kim.ID, Content: "new", SenderID: kim.ID, CreatedAt: now},
		// outside the audience
		{CounterpartID: alum.ID, Content: "x", SenderID: alum.ID, CreatedAt: now.Add(time.Minute)},
		{CounterpartID: far.ID, Content: "y", SenderID: far.ID, CreatedAt: now.Add(time.Minute)},
	}}
	svc := NewMessageService(msgs, users, zerolog.Nop())

	conns, err := svc.GetConnections(context.Background(), Actor{UserID: me.ID, CollegeID: 1, Role: models.RoleStudent}, VariantGeneral)
	require.NoError(t, err)

	var names, labels []string
	for _, c := range conns {
		names = append(names, c.User.Name)
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"kim", "zed", "amy", "bea"}, names)
	assert.Equal(t, []string{LabelMessaged, LabelMessaged, "same-role-same-college", "same-role-same-college"}, labels)
	assert.Equal(t, "new", conns[0].LastMessage.Content)
	assert.Nil(t, conns[2].LastMessage)
	assert.Equal(t, amy.ID, conns[2].User.ID)
	assert.Equal(t, bea.ID, conns[3].User.ID)
	assert.Equal(t, models.RoomID(me.ID, kim.ID), conns[0].RoomID)
}

func TestGetConnectionsVariants(t *testing.T) {
	users := newFakeUsers()
	me := users.add("me", models.RoleAlumni, 1)
	users.add("stu", models.RoleStudent, 1)
	users.add("alum", models.RoleAlumni, 1)
	users.add("dir", models.RoleDirector, 1)
	users.add("fac", models.RoleFaculty, 1)
	svc := NewMessageService(&fakeMessages{}, users, zerolog.Nop())
	actor := Actor{UserID: me.ID, CollegeID: 1, Role: models.RoleAlumni}
	ctx := context.Background()

	cases := map[string]struct {
		names []string
		label string
	}{
		VariantAlumni:   {[]string{"alum"}, "same-college-alumni"},
		VariantJunior:   {[]string{"stu"}, "same-college-junior"},
		VariantDirector: {[]string{"dir", "fac"}, "same-college-staff"},
	}
	for variant, want := range cases {
		conns, err := svc.GetConnections(ctx, actor, variant)
		require.NoError(t, err, variant)
		var names []string
		for _, c := range conns {
			names = append(names, c.User.Name)
			assert.Equal(t, want.label, c.Label, variant)
		}
		assert.Equal(t, want.names, names, variant)
	}

	_, err := svc.GetConnections(ctx, actor, "everyone")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

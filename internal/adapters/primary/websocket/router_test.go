package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cuelight/engage-backend/internal/core/domain"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
)

// fakeAccessPolicy grants control to admins and recorded owners, matching
// the production policy's contract without any repository.
type fakeAccessPolicy struct {
	owners map[string]string
	calls  int
}

func (f *fakeAccessPolicy) CanControlEvent(_ context.Context, identity *domain.Identity, eventID string) (bool, error) {
	f.calls++
	if identity == nil {
		return false, apperrors.ErrNotAuthenticated
	}
	if identity.IsAdmin {
		return true, nil
	}
	owner, ok := f.owners[eventID]
	return ok && owner == identity.UserID, nil
}

func newTestRouter(h *Hub, owners map[string]string) (*Router, *fakeAccessPolicy) {
	access := &fakeAccessPolicy{owners: owners}
	return NewRouter(h, access, testLogger()), access
}

func send(r *Router, c *Client, format string, args ...any) {
	r.HandleMessage(c, []byte(fmt.Sprintf(format, args...)))
}

func TestRouterPingPong(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)
	c := newTestClient(t, h, nil)

	send(r, c, `{"type":"ping","timestamp":1}`)

	env := recvMessage(t, c, time.Second)
	require.Equal(t, domain.MsgPong, env.Type)
	require.NotZero(t, env.Timestamp)
}

func TestRouterAnonymousJoinEvent(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)
	c := newTestClient(t, h, nil)

	send(r, c, `{"type":"join_event","payload":{"eventId":"e1"},"timestamp":1}`)

	env := recvMessageOfType(t, c, domain.MsgSessionStart, time.Second)
	p := env.Payload.(domain.SessionStartPayload)
	require.Equal(t, "e1", p.EventID)
	require.Equal(t, int64(0), p.CurrentTimecode)
	require.Equal(t, domain.AnonymousUserID, p.UserID)
	require.NotEmpty(t, p.SessionID)
	require.True(t, h.RoomTimerRunning("e1"))
}

func TestRouterJoinEventRequiresEventID(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)
	c := newTestClient(t, h, nil)

	send(r, c, `{"type":"join_event","payload":{},"timestamp":1}`)

	env := recvMessage(t, c, time.Second)
	require.Equal(t, domain.MsgError, env.Type)
	require.Equal(t, apperrors.CodeValidationError, env.Payload.(domain.ErrorPayload).Code)
	require.Zero(t, h.ConnectionStats().ActiveRooms, "validation failure must not mutate state")
}

func TestRouterHeartbeatRequest(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)
	c := newTestClient(t, h, nil)

	send(r, c, `{"type":"heartbeat_request","payload":{},"timestamp":1}`)
	env := recvMessage(t, c, time.Second)
	require.Equal(t, domain.MsgError, env.Type, "heartbeat_request outside a room is a validation error")

	send(r, c, `{"type":"join_event","payload":{"eventId":"e1"},"timestamp":1}`)
	recvMessageOfType(t, c, domain.MsgSessionStart, time.Second)

	h.SetEventTimecode("e1", 7)
	send(r, c, `{"type":"heartbeat_request","payload":{},"timestamp":1}`)

	env = recvMessageOfType(t, c, domain.MsgHeartbeat, time.Second)
	require.GreaterOrEqual(t, env.Payload.(domain.HeartbeatPayload).ServerTimecode, int64(7))
}

func TestRouterSubscribeAuthenticatedOnly(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)

	anon := newTestClient(t, h, nil)
	send(r, anon, `{"type":"subscribe","payload":{"type":"notifications"},"timestamp":1}`)
	env := recvMessage(t, anon, time.Second)
	require.Equal(t, domain.MsgError, env.Type)
	require.Equal(t, apperrors.CodeAuthenticationRequired, env.Payload.(domain.ErrorPayload).Code)
	require.Zero(t, h.ConnectionStats().NotificationSubscribers)

	authed := newTestClient(t, h, authedIdentity("u1"))
	send(r, authed, `{"type":"subscribe","payload":{"type":"notifications"},"timestamp":1}`)
	env = recvMessage(t, authed, time.Second)
	require.Equal(t, domain.MsgSubscribed, env.Type)
	require.Equal(t, 1, h.ConnectionStats().NotificationSubscribers)

	// Duplicate subscribe leaves membership unchanged.
	send(r, authed, `{"type":"subscribe","payload":{"type":"notifications"},"timestamp":1}`)
	env = recvMessage(t, authed, time.Second)
	require.Equal(t, domain.MsgSubscribed, env.Type)
	require.Equal(t, 1, h.ConnectionStats().NotificationSubscribers)
}

func TestRouterSubscribeRejectsUnknownChannel(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)
	c := newTestClient(t, h, authedIdentity("u1"))

	send(r, c, `{"type":"subscribe","payload":{"type":"everything"},"timestamp":1}`)

	env := recvMessage(t, c, time.Second)
	require.Equal(t, domain.MsgError, env.Type)
	require.Equal(t, apperrors.CodeValidationError, env.Payload.(domain.ErrorPayload).Code)
}

func TestRouterSendCueDeniedForNonOwner(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, map[string]string{"e1": "u1"})

	member := newTestClient(t, h, nil)
	send(r, member, `{"type":"join_event","payload":{"eventId":"e1"},"timestamp":1}`)
	recvMessageOfType(t, member, domain.MsgSessionStart, time.Second)

	intruder := newTestClient(t, h, authedIdentity("u2"))
	send(r, intruder, `{"type":"send_cue","payload":{"eventId":"e1","cue":{"type":"x"}},"timestamp":1}`)

	env := recvMessage(t, intruder, time.Second)
	require.Equal(t, domain.MsgError, env.Type)
	require.Equal(t, apperrors.CodeInsufficientPermissions, env.Payload.(domain.ErrorPayload).Code)

	// No cue must have reached the room.
	for drained := false; !drained; {
		select {
		case got := <-member.send:
			require.NotEqual(t, domain.MsgCue, got.Type)
		default:
			drained = true
		}
	}
}

func TestRouterSendCueDeniedForAnonymous(t *testing.T) {
	h := newTestHub()
	r, access := newTestRouter(h, map[string]string{"e1": "u1"})
	c := newTestClient(t, h, nil)

	send(r, c, `{"type":"send_cue","payload":{"eventId":"e1","cue":{"type":"x"}},"timestamp":1}`)

	env := recvMessage(t, c, time.Second)
	require.Equal(t, domain.MsgError, env.Type)
	require.Equal(t, apperrors.CodeInsufficientPermissions, env.Payload.(domain.ErrorPayload).Code)
	require.Zero(t, access.calls, "anonymous denial must not hit the ownership store")
}

func TestRouterAdminCueFansOutToRoom(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, map[string]string{"e1": "u1"})

	m1 := newTestClient(t, h, nil)
	m2 := newTestClient(t, h, nil)
	send(r, m1, `{"type":"join_event","payload":{"eventId":"e1"},"timestamp":1}`)
	send(r, m2, `{"type":"join_event","payload":{"eventId":"e1"},"timestamp":1}`)
	recvMessageOfType(t, m1, domain.MsgSessionStart, time.Second)
	recvMessageOfType(t, m2, domain.MsgSessionStart, time.Second)

	admin := newTestClient(t, h, &domain.Identity{UserID: "root", IsAdmin: true})
	send(r, admin, `{"type":"send_cue","payload":{"eventId":"e1","cue":{"type":"x"}},"timestamp":1}`)

	for _, m := range []*Client{m1, m2} {
		env := recvMessageOfType(t, m, domain.MsgCue, time.Second)
		require.JSONEq(t, `{"type":"x"}`, string(env.Payload.(json.RawMessage)))
	}
}

func TestRouterOwnerCanUpdateTimecode(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, map[string]string{"e1": "u1"})
	owner := newTestClient(t, h, authedIdentity("u1"))

	send(r, owner, `{"type":"update_timecode","payload":{"eventId":"e1","timecode":250},"timestamp":1}`)

	require.Equal(t, int64(250), h.CurrentTimecode("e1"))

	// No immediate broadcast: the owner's queue stays empty.
	select {
	case env := <-owner.send:
		t.Fatalf("unexpected message after update_timecode: %s", env.Type)
	default:
	}
}

func TestRouterUpdateTimecodeValidation(t *testing.T) {
	h := newTestHub()
	r, access := newTestRouter(h, map[string]string{"e1": "u1"})
	owner := newTestClient(t, h, authedIdentity("u1"))

	cases := []struct {
		name    string
		payload string
	}{
		{"missing eventId", `{"timecode":10}`},
		{"missing timecode", `{"eventId":"e1"}`},
		{"non-numeric timecode", `{"eventId":"e1","timecode":"soon"}`},
		{"negative timecode", `{"eventId":"e1","timecode":-5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			send(r, owner, `{"type":"update_timecode","payload":%s,"timestamp":1}`, tc.payload)
			env := recvMessage(t, owner, time.Second)
			require.Equal(t, domain.MsgError, env.Type)
			require.Equal(t, apperrors.CodeValidationError, env.Payload.(domain.ErrorPayload).Code)
		})
	}

	require.Zero(t, h.CurrentTimecode("e1"), "validation failures must not move the clock")
	require.Zero(t, access.calls, "validation failures must not trigger authorization lookups")
}

func TestRouterSendCueValidation(t *testing.T) {
	h := newTestHub()
	r, access := newTestRouter(h, map[string]string{"e1": "u1"})
	owner := newTestClient(t, h, authedIdentity("u1"))

	send(r, owner, `{"type":"send_cue","payload":{"eventId":"e1"},"timestamp":1}`)
	env := recvMessage(t, owner, time.Second)
	require.Equal(t, domain.MsgError, env.Type)
	require.Equal(t, apperrors.CodeValidationError, env.Payload.(domain.ErrorPayload).Code)
	require.Zero(t, access.calls)
}

func TestRouterUnknownTypeIgnored(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)
	c := newTestClient(t, h, nil)

	send(r, c, `{"type":"dance","payload":{},"timestamp":1}`)

	select {
	case env := <-c.send:
		t.Fatalf("unexpected reply to unknown type: %s", env.Type)
	default:
	}
	require.False(t, c.isClosed(), "unknown types never close the connection")
}

func TestRouterMalformedJSON(t *testing.T) {
	h := newTestHub()
	r, _ := newTestRouter(h, nil)
	c := newTestClient(t, h, nil)

	r.HandleMessage(c, []byte(`{nope`))

	env := recvMessage(t, c, time.Second)
	require.Equal(t, domain.MsgError, env.Type)
	require.Equal(t, apperrors.CodeValidationError, env.Payload.(domain.ErrorPayload).Code)
	require.False(t, c.isClosed())
}

package notify

import (
	"net/http"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// Socket.IO event names.
const (
	EventSubscribe    = "subscribe"
	EventUnsubscribe  = "unsubscribe"
	EventNotification = "notification"
)

// Bridge is a presentation listener that pushes notifications to Socket.IO
// clients. A client emits "subscribe" with a requester id and then receives
// every "notification" addressed to that requester.
type Bridge struct {
	srv       *socketio.Server
	log       logrus.FieldLogger
	delivered atomic.Int64
}

// NewBridge creates the Socket.IO server. An origin of "*" allows any origin.
func NewBridge(origins []string) *Bridge {
	opts := socketio.DefaultServerOptions()
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	if len(origins) == 0 || slices.Contains(origins, "*") {
		opts.SetCors(&types.Cors{Origin: "*"})
	} else {
		allowed := make([]any, 0, len(origins))
		for _, o := range origins {
			allowed = append(allowed, o)
		}
		opts.SetCors(&types.Cors{Origin: allowed, Credentials: true})
	}

	b := &Bridge{
		srv: socketio.NewServer(nil, opts),
		log: logrus.WithField("component", "socketio"),
	}

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	b.srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		log := b.log.WithField("socket_id", socket.Id())
		log.Debug("client connected")

		//nolint:errcheck
		socket.On(EventSubscribe, func(datas ...any) {
			id, ok := subjectArg(datas)
			if !ok {
				log.Warn("subscribe without requester id")
				return
			}
			socket.Join(subjectRoom(id))
			log.WithField("subject_id", id).Debug("client subscribed")
		})

		//nolint:errcheck
		socket.On(EventUnsubscribe, func(datas ...any) {
			if id, ok := subjectArg(datas); ok {
				socket.Leave(subjectRoom(id))
			}
		})

		//nolint:errcheck
		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			log.Debug("client disconnected")
		})
	})

	return b
}

// Handler serves the Socket.IO endpoint.
func (b *Bridge) Handler() http.Handler {
	return b.srv.ServeHandler(nil)
}

// Close disconnects every client.
func (b *Bridge) Close() {
	b.srv.Close(nil)
}

// Delivered returns the number of notifications pushed so far.
func (b *Bridge) Delivered() int64 {
	return b.delivered.Load()
}

// Behaviours returns the bridge's behaviour table.
func (b *Bridge) Behaviours() []actor.Behaviour {
	return []actor.Behaviour{{
		Name:   "push",
		Match:  isNotification,
		Handle: b.push,
	}}
}

func (b *Bridge) push(c *actor.Conversation) {
	n := c.Message().Content.(model.Notification)
	payload := map[string]any{
		"subject_id": n.SubjectID,
		"category":   n.Category,
		"message":    n.Message,
	}
	if err := b.srv.To(subjectRoom(n.SubjectID)).Emit(EventNotification, payload); err != nil {
		c.Log().WithError(err).WithField("subject_id", n.SubjectID).Warn("socket.io emit failed")
		return
	}
	b.delivered.Add(1)
}

func subjectRoom(id string) socketio.Room {
	return socketio.Room("requester:" + id)
}

func subjectArg(datas []any) (string, bool) {
	if len(datas) == 0 {
		return "", false
	}
	id, ok := datas[0].(string)
	id = strings.TrimSpace(id)
	return id, ok && id != ""
}

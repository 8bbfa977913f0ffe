package hub

import (
	"context"
	"fmt"
	"log"
	"strings"
	"study-chat-server/internal/domain"
	"study-chat-server/internal/service"
	"time"

	"github.com/google/uuid"
)

// RoomConfig bounds a room's memory and fan-out cost.
type RoomConfig struct {
	MaxMembers   int
	HistoryLimit int64
	TypingTTL    time.Duration
	SweepEvery   time.Duration
}

func (c RoomConfig) withDefaults() RoomConfig {
	if c.MaxMembers <= 0 {
		c.MaxMembers = 64
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 200
	}
	if c.TypingTTL <= 0 {
		c.TypingTTL = 2 * time.Second
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = 250 * time.Millisecond
	}
	return c
}

// --- Inbound commands, one struct per operation ---

type admitCmd struct {
	ctx    context.Context
	sess   *Session
	roster []domain.Member
	reply  chan error
}

type dismissCmd struct {
	sess  *Session
	reply chan struct{}
}

type postCmd struct {
	ctx     context.Context
	sess    *Session
	content string
	reply   chan error
}

type typingCmd struct {
	sess     *Session
	isTyping bool
}

type stopCmd struct{}

// Room holds the live state of one chat room. Every mutation flows
// through the commands channel and is applied by the single run()
// goroutine, so broadcast order equals acceptance order and no lock
// is shared across rooms.
type Room struct {
	id       string
	cfg      RoomConfig
	store    service.MessageStore
	registry *Registry

	commands chan interface{}
	done     chan struct{}

	// Owned by run(); never touched from outside the loop.
	sessions map[*Session]bool
	online   map[string]int       // userID -> active session count
	names    map[string]string    // userID -> last seen display name
	typing   map[string]time.Time // userID -> typing entry expiry
	roster   []domain.Member      // supplied by the group directory
}

func newRoom(id string, registry *Registry, store service.MessageStore, cfg RoomConfig) *Room {
	return &Room{
		id:       id,
		cfg:      cfg.withDefaults(),
		store:    store,
		registry: registry,
		commands: make(chan interface{}),
		done:     make(chan struct{}),
		sessions: make(map[*Session]bool),
		online:   make(map[string]int),
		names:    make(map[string]string),
		typing:   make(map[string]time.Time),
	}
}

// ID returns the externally assigned room id.
func (r *Room) ID() string {
	return r.id
}

// Admit adds a session to the room, replays history to it and notifies
// the other members. Returns ErrRoomFull or ErrRoomClosed; a history
// read failure fails the admit with no partial state change.
func (r *Room) Admit(ctx context.Context, sess *Session, roster []domain.Member) error {
	cmd := admitCmd{ctx: ctx, sess: sess, roster: roster, reply: make(chan error, 1)}
	select {
	case r.commands <- cmd:
		return <-cmd.reply
	case <-r.done:
		return ErrRoomClosed
	}
}

// Dismiss removes a session from the room. Idempotent: dismissing a
// session that already left (or a closed room) is a no-op.
func (r *Room) Dismiss(sess *Session) {
	cmd := dismissCmd{sess: sess, reply: make(chan struct{})}
	select {
	case r.commands <- cmd:
		<-cmd.reply
	case <-r.done:
	}
}

// Post validates, persists and fans out a chat message. Empty content
// after trimming is dropped silently. A store failure is returned to
// the caller and nothing is broadcast.
func (r *Room) Post(ctx context.Context, sess *Session, content string) error {
	cmd := postCmd{ctx: ctx, sess: sess, content: content, reply: make(chan error, 1)}
	select {
	case r.commands <- cmd:
		return <-cmd.reply
	case <-r.done:
		return ErrRoomClosed
	}
}

// SetTyping marks or clears the typing state of the session's user.
func (r *Room) SetTyping(sess *Session, isTyping bool) {
	select {
	case r.commands <- typingCmd{sess: sess, isTyping: isTyping}:
	case <-r.done:
	}
}

// stop force-closes the room regardless of membership (shutdown path).
func (r *Room) stop() {
	select {
	case r.commands <- stopCmd{}:
	case <-r.done:
	}
}

func (r *Room) run() {
	ticker := time.NewTicker(r.cfg.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-r.commands:
			switch c := cmd.(type) {
			case admitCmd:
				err := r.handleAdmit(c)
				if err != nil && len(r.sessions) == 0 {
					// First admit failed; don't leak an empty room.
					r.close()
					c.reply <- err
					return
				}
				c.reply <- err
			case dismissCmd:
				r.handleDismiss(c.sess)
				if len(r.sessions) == 0 {
					// Evict before acking so a caller observing the
					// registry after Dismiss sees the room gone.
					r.close()
					close(c.reply)
					return
				}
				close(c.reply)
			case postCmd:
				c.reply <- r.handlePost(c)
			case typingCmd:
				r.handleTyping(c.sess, c.isTyping)
			case stopCmd:
				r.close()
				return
			}
		case now := <-ticker.C:
			r.sweepTyping(now)
		}
	}
}

// close evicts the room from the registry and releases waiters. Called
// only from run(), which returns immediately afterwards.
func (r *Room) close() {
	r.registry.release(r.id, r)
	close(r.done)
}

func (r *Room) handleAdmit(c admitCmd) error {
	if r.sessions[c.sess] {
		// Duplicate join for the same session: no-op, no re-replay.
		return nil
	}
	if len(r.sessions) >= r.cfg.MaxMembers {
		return ErrRoomFull
	}
	if len(c.roster) > 0 {
		r.roster = c.roster
	}

	history, err := r.store.ReadHistory(c.ctx, r.id, r.cfg.HistoryLimit)
	if err != nil {
		return fmt.Errorf("history read for room %s: %w", r.id, err)
	}

	id := c.sess.identity
	r.sessions[c.sess] = true
	r.names[id.UserID] = id.UserName
	r.online[id.UserID]++
	wentOnline := r.online[id.UserID] == 1

	c.sess.deliver(domain.EventRoomHistory, history)
	if wentOnline {
		r.broadcastExcept(c.sess, domain.EventUserOnline, domain.PresencePayload{UserID: id.UserID})
		r.broadcastExcept(c.sess, domain.EventSystemMessage, systemNotice(fmt.Sprintf("%s joined the room", id.UserName)))
	}
	r.broadcast(domain.EventRoomMembers, r.memberList())
	return nil
}

func (r *Room) handleDismiss(sess *Session) {
	if !r.sessions[sess] {
		return
	}
	delete(r.sessions, sess)

	id := sess.identity
	r.online[id.UserID]--
	if r.online[id.UserID] > 0 {
		return
	}
	delete(r.online, id.UserID)

	if _, wasTyping := r.typing[id.UserID]; wasTyping {
		delete(r.typing, id.UserID)
		r.broadcast(domain.EventUserTyping, domain.TypingPayload{
			UserID: id.UserID, UserName: id.UserName, IsTyping: false,
		})
	}

	r.broadcast(domain.EventUserOffline, domain.PresencePayload{UserID: id.UserID})
	r.broadcast(domain.EventSystemMessage, systemNotice(fmt.Sprintf("%s left the room", id.UserName)))
	r.broadcast(domain.EventRoomMembers, r.memberList())
}

func (r *Room) handlePost(c postCmd) error {
	if !r.sessions[c.sess] {
		return nil
	}
	content := strings.TrimSpace(c.content)
	if content == "" {
		// Nothing to send; mirror the client's empty-input behavior.
		return nil
	}

	id := c.sess.identity
	msg, err := r.store.Append(c.ctx, r.id, id.UserID, id.UserName, content)
	if err != nil {
		return err
	}

	r.broadcast(domain.EventChatMessage, msg)
	return nil
}

func (r *Room) handleTyping(sess *Session, isTyping bool) {
	if !r.sessions[sess] {
		return
	}
	id := sess.identity
	if isTyping {
		_, already := r.typing[id.UserID]
		r.typing[id.UserID] = time.Now().Add(r.cfg.TypingTTL)
		if !already {
			r.broadcastExcept(sess, domain.EventUserTyping, domain.TypingPayload{
				UserID: id.UserID, UserName: id.UserName, IsTyping: true,
			})
		}
		return
	}
	if _, ok := r.typing[id.UserID]; ok {
		delete(r.typing, id.UserID)
		r.broadcastExcept(sess, domain.EventUserTyping, domain.TypingPayload{
			UserID: id.UserID, UserName: id.UserName, IsTyping: false,
		})
	}
}

// sweepTyping expires typing entries whose keep-alive window lapsed.
func (r *Room) sweepTyping(now time.Time) {
	for userID, expiry := range r.typing {
		if now.Before(expiry) {
			continue
		}
		delete(r.typing, userID)
		r.broadcastExceptUser(userID, domain.EventUserTyping, domain.TypingPayload{
			UserID: userID, UserName: r.names[userID], IsTyping: false,
		})
	}
}

// memberList merges the group roster with live presence. Users online
// in the room but absent from the roster (stale or failed lookup) are
// appended so the client always sees everyone who can speak.
func (r *Room) memberList() []domain.Member {
	seen := make(map[string]bool, len(r.roster))
	members := make([]domain.Member, 0, len(r.roster))
	for _, m := range r.roster {
		m.IsOnline = r.online[m.UserID] > 0
		members = append(members, m)
		seen[m.UserID] = true
	}
	for userID := range r.online {
		if seen[userID] {
			continue
		}
		members = append(members, domain.Member{
			UserID:   userID,
			UserName: r.names[userID],
			IsOnline: true,
		})
	}
	return members
}

func (r *Room) broadcast(eventType string, payload interface{}) {
	r.broadcastExcept(nil, eventType, payload)
}

func (r *Room) broadcastExcept(skip *Session, eventType string, payload interface{}) {
	frame, err := marshalFrame(eventType, payload)
	if err != nil {
		log.Printf("room %s: marshal %s frame: %v", r.id, eventType, err)
		return
	}
	for sess := range r.sessions {
		if sess == skip {
			continue
		}
		sess.enqueue(frame)
	}
}

// broadcastExceptUser skips every session of one user; used for typing
// expiry so a user never receives their own typing echo.
func (r *Room) broadcastExceptUser(userID, eventType string, payload interface{}) {
	frame, err := marshalFrame(eventType, payload)
	if err != nil {
		log.Printf("room %s: marshal %s frame: %v", r.id, eventType, err)
		return
	}
	for sess := range r.sessions {
		if sess.identity.UserID == userID {
			continue
		}
		sess.enqueue(frame)
	}
}

func systemNotice(content string) domain.SystemPayload {
	return domain.SystemPayload{
		MessageID: uuid.NewString(),
		Content:   content,
		Type:      domain.MessageTypeSystem,
		CreatedAt: time.Now().UTC(),
	}
}

package bot

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"vishwaguru-be/models"
)

// Reply is an outgoing chat message.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Messenger is the chat platform side of the bot.
type Messenger interface {
	Send(ctx context.Context, chatID int64, reply Reply) error
	DownloadPhoto(ctx context.Context, photo PhotoRef) (io.ReadCloser, error)
}

// Intake is the storage side of the bot.
type Intake interface {
	SaveFile(name string, r io.Reader) (string, error)
	Persist(ctx context.Context, issue *models.Issue) error
}

type session struct {
	mu      sync.Mutex
	conv    Conversation
	touched time.Time
	refs    int // guarded by Bot.mu
}

// Bot keeps one conversation per chat and executes the effects Step asks for.
type Bot struct {
	messenger Messenger
	intake    Intake
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

// New builds a bot.
func New(messenger Messenger, intake Intake, log *zap.Logger) *Bot {
	return &Bot{
		messenger: messenger,
		intake:    intake,
		log:       log.Named("bot"),
		sessions:  make(map[int64]*session),
	}
}

// Conversation returns the current state of a chat. Chats without an
// active report are Idle.
func (b *Bot) Conversation(chatID int64) Conversation {
	b.mu.Lock()
	s, ok := b.sessions[chatID]
	if ok {
		s.refs++
	}
	b.mu.Unlock()
	if !ok {
		return Conversation{}
	}
	defer b.release(chatID, s)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv
}

// Sessions reports how many chats currently hold state.
func (b *Bot) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// Prune forgets reports abandoned for longer than idle and returns how
// many were dropped.
func (b *Bot) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	b.mu.Lock()
	defer b.mu.Unlock()
	dropped := 0
	for chatID, s := range b.sessions {
		if s.refs == 0 && !s.touched.After(cutoff) {
			delete(b.sessions, chatID)
			dropped++
		}
	}
	return dropped
}

func (b *Bot) acquire(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	s.refs++
	return s
}

// release drops the session once no caller holds it and the chat is not
// mid-report. Finished chats restart from Idle.
func (b *Bot) release(chatID int64, s *session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s.refs--
	if s.refs == 0 && !s.conv.State.Active() {
		delete(b.sessions, chatID)
	}
}

// Handle processes one incoming event for a chat. Events for the same chat
// are applied in order; different chats proceed independently.
func (b *Bot) Handle(ctx context.Context, chatID int64, ev Event) {
	s := b.acquire(chatID)
	defer b.release(chatID, s)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.touched = time.Now()
	conv, eff := Step(s.conv, ev)
	for {
		if eff.Reply != "" {
			if err := b.messenger.Send(ctx, chatID, Reply{
				Text:           eff.Reply,
				Keyboard:       eff.Keyboard,
				RemoveKeyboard: eff.RemoveKeyboard,
			}); err != nil {
				b.log.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
			}
		}

		var next Event
		switch {
		case eff.Download != nil:
			next = b.savePhoto(ctx, chatID, *eff.Download)
		case eff.Persist != nil:
			next = b.persist(ctx, chatID, *eff.Persist)
		default:
			s.conv = conv
			return
		}
		conv, eff = Step(conv, next)
	}
}

func (b *Bot) savePhoto(ctx context.Context, chatID int64, photo PhotoRef) Event {
	body, err := b.messenger.DownloadPhoto(ctx, photo)
	if err != nil {
		b.log.Error("failed to download photo", zap.Int64("chat_id", chatID), zap.Error(err))
		return Event{Kind: EventPhotoFailed}
	}
	defer body.Close()

	path, err := b.intake.SaveFile(photo.FileName(), body)
	if err != nil {
		return Event{Kind: EventPhotoFailed}
	}
	return Event{Kind: EventPhotoSaved, Path: path}
}

func (b *Bot) persist(ctx context.Context, chatID int64, r Report) Event {
	issue := &models.Issue{
		Description: r.Description,
		Category:    r.Category,
		ImagePath:   r.PhotoPath,
		Source:      models.SourceTelegram,
	}
	if err := b.intake.Persist(ctx, issue); err != nil {
		b.log.Error("failed to save reported issue", zap.Int64("chat_id", chatID), zap.Error(err))
		return Event{Kind: EventPersistFailed}
	}
	return Event{Kind: EventPersisted, IssueID: issue.ID}
}

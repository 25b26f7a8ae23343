package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_HappyPath(t *testing.T) {
	conv, eff := Step(Conversation{}, Event{Kind: EventStart})
	assert.Equal(t, AwaitingPhoto, conv.State)
	assert.Equal(t, welcomeReply, eff.Reply)

	photo := PhotoRef{FileID: "f1", FileUniqueID: "u1", UserID: 42}
	conv, eff = Step(conv, Event{Kind: EventPhoto, Photo: photo})
	assert.Equal(t, AwaitingPhoto, conv.State)
	require.NotNil(t, eff.Download)
	assert.Equal(t, photo, *eff.Download)
	assert.Empty(t, eff.Reply)

	conv, eff = Step(conv, Event{Kind: EventPhotoSaved, Path: "data/uploads/x.jpg"})
	assert.Equal(t, AwaitingDescription, conv.State)
	assert.Equal(t, "data/uploads/x.jpg", conv.PhotoPath)
	assert.Equal(t, photoReceivedReply, eff.Reply)

	conv, eff = Step(conv, Event{Kind: EventText, Text: "Overflowing bin"})
	assert.Equal(t, AwaitingCategory, conv.State)
	assert.Equal(t, "Overflowing bin", conv.Description)
	assert.Equal(t, categoryReply, eff.Reply)
	assert.Equal(t, CategoryKeyboard, eff.Keyboard)

	conv, eff = Step(conv, Event{Kind: EventText, Text: "Garbage"})
	require.NotNil(t, eff.Persist)
	assert.Equal(t, Report{Description: "Overflowing bin", Category: "Garbage", PhotoPath: "data/uploads/x.jpg"}, *eff.Persist)

	conv, eff = Step(conv, Event{Kind: EventPersisted, IssueID: 17})
	assert.Equal(t, Done, conv.State)
	assert.Equal(t, "Thank you! Your issue has been reported.\nReference ID: #17\n\nWe will generate an action plan for you soon.", eff.Reply)
	assert.True(t, eff.RemoveKeyboard)
}

func TestStep_PersistFailureStillEnds(t *testing.T) {
	conv := Conversation{State: AwaitingCategory, Description: "d", PhotoPath: "p"}
	conv, eff := Step(conv, Event{Kind: EventPersistFailed})
	assert.Equal(t, Done, conv.State)
	assert.Equal(t, "Sorry, something went wrong while saving your issue.", eff.Reply)
}

func TestStep_Cancel(t *testing.T) {
	for _, s := range []State{AwaitingPhoto, AwaitingDescription, AwaitingCategory} {
		conv, eff := Step(Conversation{State: s, Description: "x"}, Event{Kind: EventCancel})
		assert.Equal(t, Conversation{State: Done}, conv, s.String())
		assert.Equal(t, "Issue reporting cancelled.", eff.Reply)
		assert.True(t, eff.RemoveKeyboard)
	}

	conv, eff := Step(Conversation{}, Event{Kind: EventCancel})
	assert.Equal(t, Idle, conv.State)
	assert.Equal(t, Effect{}, eff)
}

func TestStep_IgnoresUnexpectedInput(t *testing.T) {
	tests := []struct {
		name string
		conv Conversation
		ev   Event
	}{
		{"text while awaiting photo", Conversation{State: AwaitingPhoto}, Event{Kind: EventText, Text: "hi"}},
		{"photo while awaiting description", Conversation{State: AwaitingDescription}, Event{Kind: EventPhoto}},
		{"unknown command", Conversation{State: AwaitingCategory}, Event{Kind: EventCommand, Text: "help"}},
		{"text before start", Conversation{}, Event{Kind: EventText, Text: "pothole"}},
		{"text after done", Conversation{State: Done}, Event{Kind: EventText, Text: "Road"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, eff := Step(tt.conv, tt.ev)
			assert.Equal(t, tt.conv, conv)
			assert.Equal(t, Effect{}, eff)
		})
	}
}

func TestStep_PhotoFailureKeepsWaiting(t *testing.T) {
	conv, eff := Step(Conversation{State: AwaitingPhoto}, Event{Kind: EventPhotoFailed})
	assert.Equal(t, AwaitingPhoto, conv.State)
	assert.Equal(t, photoFailedReply, eff.Reply)
}

func TestStep_StartResets(t *testing.T) {
	conv, _ := Step(Conversation{State: AwaitingCategory, Description: "old", PhotoPath: "p"}, Event{Kind: EventStart})
	assert.Equal(t, Conversation{State: AwaitingPhoto}, conv)
}

func TestPhotoRefFileName(t *testing.T) {
	assert.Equal(t, "telegram_42_AQADx.jpg", PhotoRef{UserID: 42, FileUniqueID: "AQADx"}.FileName())
}

func TestEventFromMessage(t *testing.T) {
	command := func(text string) *tgbotapi.Message {
		return &tgbotapi.Message{
			Text:     text,
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		}
	}

	ev, ok := EventFromMessage(command("/start"))
	require.True(t, ok)
	assert.Equal(t, EventStart, ev.Kind)

	ev, ok = EventFromMessage(command("/cancel"))
	require.True(t, ok)
	assert.Equal(t, EventCancel, ev.Kind)

	ev, ok = EventFromMessage(command("/help"))
	require.True(t, ok)
	assert.Equal(t, EventCommand, ev.Kind)

	ev, ok = EventFromMessage(&tgbotapi.Message{
		From: &tgbotapi.User{ID: 7},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", FileUniqueID: "s"},
			{FileID: "large", FileUniqueID: "l"},
		},
	})
	require.True(t, ok)
	assert.Equal(t, EventPhoto, ev.Kind)
	assert.Equal(t, PhotoRef{FileID: "large", FileUniqueID: "l", UserID: 7}, ev.Photo)

	ev, ok = EventFromMessage(&tgbotapi.Message{Text: "Road"})
	require.True(t, ok)
	assert.Equal(t, Event{Kind: EventText, Text: "Road"}, ev)

	_, ok = EventFromMessage(&tgbotapi.Message{})
	assert.False(t, ok)
}

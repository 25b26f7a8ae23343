// Package bot runs the Telegram intake conversation: photo, then
// description, then category, then the issue is stored.
package bot

import "fmt"

// State is where a chat is in the reporting flow.
type State int

const (
	Idle State = iota
	AwaitingPhoto
	AwaitingDescription
	AwaitingCategory
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPhoto:
		return "awaiting_photo"
	case AwaitingDescription:
		return "awaiting_description"
	case AwaitingCategory:
		return "awaiting_category"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Active reports whether s is inside a reporting flow.
func (s State) Active() bool {
	return s == AwaitingPhoto || s == AwaitingDescription || s == AwaitingCategory
}

// EventKind tags an Event.
type EventKind int

const (
	EventStart EventKind = iota
	EventCancel
	EventCommand
	EventPhoto
	EventText

	// Results of effects, fed back by the runner.
	EventPhotoSaved
	EventPhotoFailed
	EventPersisted
	EventPersistFailed
)

// PhotoRef identifies a photo on the chat platform.
type PhotoRef struct {
	FileID       string
	FileUniqueID string
	UserID       int64
}

// FileName is the name a downloaded photo is stored under.
func (p PhotoRef) FileName() string {
	return fmt.Sprintf("telegram_%d_%s.jpg", p.UserID, p.FileUniqueID)
}

// Event is an incoming message or an effect result.
type Event struct {
	Kind    EventKind
	Text    string
	Photo   PhotoRef
	Path    string
	IssueID uint
}

// Report is what gets persisted once the flow completes.
type Report struct {
	Description string
	Category    string
	PhotoPath   string
}

// Effect is the work the runner must do after a transition. A zero Effect
// means nothing happens.
type Effect struct {
	Reply          string
	Keyboard       [][]string
	RemoveKeyboard bool
	Download       *PhotoRef
	Persist        *Report
}

// Conversation is the per-chat state value.
type Conversation struct {
	State       State
	PhotoPath   string
	Description string
}

const (
	welcomeReply = "Namaste! Welcome to VishwaGuru.\n" +
		"Let's fix our community together.\n\n" +
		"Please send me a photo of the issue you want to report."
	photoReceivedReply = "Photo received! Now, please describe the issue in a few words."
	photoFailedReply   = "Sorry, I couldn't save that photo. Please send it again."
	categoryReply      = "Got it. Which category does this belong to?"
	savedReplyFormat   = "Thank you! Your issue has been reported.\n" +
		"Reference ID: #%d\n\n" +
		"We will generate an action plan for you soon."
	saveFailedReply = "Sorry, something went wrong while saving your issue."
	cancelledReply  = "Issue reporting cancelled."
)

// CategoryKeyboard is offered after the description.
var CategoryKeyboard = [][]string{
	{"Road", "Water"},
	{"Streetlight", "Garbage"},
	{"College Infra", "Women Safety"},
}

// Step is the transition function. It has no side effects: downloads and
// persistence are requested through the returned Effect and their results
// come back as EventPhotoSaved/EventPhotoFailed and
// EventPersisted/EventPersistFailed.
func Step(conv Conversation, ev Event) (Conversation, Effect) {
	switch ev.Kind {
	case EventStart:
		return Conversation{State: AwaitingPhoto}, Effect{Reply: welcomeReply}
	case EventCancel:
		if !conv.State.Active() {
			return conv, Effect{}
		}
		return Conversation{State: Done}, Effect{Reply: cancelledReply, RemoveKeyboard: true}
	}

	switch conv.State {
	case AwaitingPhoto:
		switch ev.Kind {
		case EventPhoto:
			photo := ev.Photo
			return conv, Effect{Download: &photo}
		case EventPhotoSaved:
			conv.State = AwaitingDescription
			conv.PhotoPath = ev.Path
			return conv, Effect{Reply: photoReceivedReply}
		case EventPhotoFailed:
			return conv, Effect{Reply: photoFailedReply}
		}

	case AwaitingDescription:
		if ev.Kind == EventText {
			conv.State = AwaitingCategory
			conv.Description = ev.Text
			return conv, Effect{Reply: categoryReply, Keyboard: CategoryKeyboard}
		}

	case AwaitingCategory:
		switch ev.Kind {
		case EventText:
			return conv, Effect{Persist: &Report{
				Description: conv.Description,
				Category:    ev.Text,
				PhotoPath:   conv.PhotoPath,
			}}
		case EventPersisted:
			return Conversation{State: Done}, Effect{
				Reply:          fmt.Sprintf(savedReplyFormat, ev.IssueID),
				RemoveKeyboard: true,
			}
		case EventPersistFailed:
			return Conversation{State: Done}, Effect{Reply: saveFailedReply}
		}
	}

	return conv, Effect{}
}

package domain

// Command names carried on the broadcast bus. The set mirrors what the rest of
// the application publishes; anything outside it is ignored by the dispatcher.
const (
	CommandLoggedIn              = "loggedIn"
	CommandLoggedOut             = "loggedOut"
	CommandUnlocked              = "unlocked"
	CommandLogout                = "logout"
	CommandLockVault             = "lockVault"
	CommandLocked                = "locked"
	CommandSyncStarted           = "syncStarted"
	CommandSyncCompleted         = "syncCompleted"
	CommandOpenSettings          = "openSettings"
	CommandOpenPremium           = "openPremium"
	CommandOpenPasswordHistory   = "openPasswordHistory"
	CommandShowFingerprintPhrase = "showFingerprintPhrase"
	CommandShowToast             = "showToast"
	CommandAnalyticsEventTrack   = "analyticsEventTrack"

	// CommandUpdateAppMenu is the outbound message other parts of the
	// application (the menu process) consume.
	CommandUpdateAppMenu = "updateAppMenu"
)

// Message is the wire shape on the broadcast bus: a string command name plus a
// loosely typed payload. It is decoded into a Command at the dispatcher
// boundary and never inspected ad hoc beyond that point.
type Message struct {
	Command string
	Data    map[string]any
}

// NewMessage creates a message with no payload.
func NewMessage(command string) Message {
	return Message{Command: command}
}

// AppMenuState is the payload of an updateAppMenu message.
type AppMenuState struct {
	IsAuthenticated bool
	IsLocked        bool
}

// Bus is the in-process broadcast channel: many publishers, subscribers keyed
// by a stable identity.
type Bus interface {
	Subscribe(id string, handler func(Message)) error
	Unsubscribe(id string) error
	Publish(msg Message)
}

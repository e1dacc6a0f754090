package domain

// Command is the closed set of decoded bus commands. Concrete variants carry
// whatever payload their message had; unknown command names decode to nil.
type Command interface{ isCommand() }

type baseCommand struct{}

func (baseCommand) isCommand() {}

type LoggedInCommand struct{ baseCommand }

type LoggedOutCommand struct{ baseCommand }

type UnlockedCommand struct{ baseCommand }

// LogoutCommand triggers the full session teardown sequence.
type LogoutCommand struct {
	baseCommand
	Expired bool
}

type LockVaultCommand struct{ baseCommand }

type LockedCommand struct{ baseCommand }

type SyncStartedCommand struct{ baseCommand }

type SyncCompletedCommand struct{ baseCommand }

type OpenSettingsCommand struct{ baseCommand }

type OpenPremiumCommand struct{ baseCommand }

type OpenPasswordHistoryCommand struct{ baseCommand }

type ShowFingerprintPhraseCommand struct{ baseCommand }

// ShowToastCommand carries the raw toast payload; normalization happens in the
// notify package, not here.
type ShowToastCommand struct {
	baseCommand
	Payload ToastPayload
}

type AnalyticsEventTrackCommand struct {
	baseCommand
	Action string
	Label  string
}

// DecodeCommand turns a bus message into its typed variant. Returns nil for
// command names outside the known vocabulary; callers treat nil as a no-op.
func DecodeCommand(msg Message) Command {
	switch msg.Command {
	case CommandLoggedIn:
		return LoggedInCommand{}
	case CommandLoggedOut:
		return LoggedOutCommand{}
	case CommandUnlocked:
		return UnlockedCommand{}
	case CommandLogout:
		return LogoutCommand{Expired: boolField(msg.Data, "expired")}
	case CommandLockVault:
		return LockVaultCommand{}
	case CommandLocked:
		return LockedCommand{}
	case CommandSyncStarted:
		return SyncStartedCommand{}
	case CommandSyncCompleted:
		return SyncCompletedCommand{}
	case CommandOpenSettings:
		return OpenSettingsCommand{}
	case CommandOpenPremium:
		return OpenPremiumCommand{}
	case CommandOpenPasswordHistory:
		return OpenPasswordHistoryCommand{}
	case CommandShowFingerprintPhrase:
		return ShowFingerprintPhraseCommand{}
	case CommandShowToast:
		return ShowToastCommand{Payload: decodeToastPayload(msg.Data)}
	case CommandAnalyticsEventTrack:
		return AnalyticsEventTrackCommand{
			Action: stringField(msg.Data, "action"),
			Label:  stringField(msg.Data, "label"),
		}
	default:
		return nil
	}
}

// boolField reads a bool out of a message payload. Anything that is not a true
// bool (missing, nil, wrong type) reads as false, matching the publisher-side
// convention of omitting false flags.
func boolField(data map[string]any, key string) bool {
	v, ok := data[key].(bool)
	return ok && v
}

func stringField(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return v
}

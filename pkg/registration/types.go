// Package registration contains the push registration handshake: the flow that
// turns the current device permission state into a deliverable push token,
// and the contracts for the platform capabilities it composes.
package registration

import "fmt"

// Platform identifies the operating system the flow is running on.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
	PlatformOther   Platform = "other"
)

// PermissionStatus is the notification permission state reported by the
// Permission Authority.
type PermissionStatus string

const (
	StatusGranted      PermissionStatus = "granted"
	StatusDenied       PermissionStatus = "denied"
	StatusUndetermined PermissionStatus = "undetermined"
)

// Importance mirrors the Android notification channel importance levels.
type Importance int

const (
	ImportanceDefault Importance = 3
	ImportanceHigh    Importance = 4
	ImportanceMax     Importance = 5
)

// DefaultChannelID is the id of the channel provisioned on Android.
const DefaultChannelID = "default"

// ChannelConfig holds the fields recognized by the Channel Provisioner.
type ChannelConfig struct {
	Name             string     `json:"name" firestore:"name"`
	Importance       Importance `json:"importance" firestore:"importance"`
	Sound            string     `json:"sound,omitempty" firestore:"sound,omitempty"`
	VibrationPattern []int      `json:"vibrationPattern,omitempty" firestore:"vibration_pattern,omitempty"`
	LightColor       string     `json:"lightColor,omitempty" firestore:"light_color,omitempty"`
}

// DefaultChannel is the configuration used for the "default" Android channel.
func DefaultChannel() ChannelConfig {
	return ChannelConfig{
		Name:             "default",
		Importance:       ImportanceMax,
		Sound:            "default",
		VibrationPattern: []int{0, 250, 250, 250},
		LightColor:       "#FF231F7C",
	}
}

// Notice is the user-facing alert shown when permission is denied.
type Notice struct {
	Title   string
	Message string
}

// DeniedNotice is presented whenever the flow ends in OutcomeDenied.
var DeniedNotice = Notice{
	Title:   "Permission denied",
	Message: "Push notifications are turned off. Enable them in Settings to receive reminders.",
}

// OutcomeKind discriminates the Outcome variants.
type OutcomeKind int

const (
	OutcomeToken OutcomeKind = iota + 1
	OutcomeUnsupported
	OutcomeDenied
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeToken:
		return "token"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeDenied:
		return "denied"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the single result of one registration attempt.
// Token is set only for OutcomeToken, Err only for OutcomeError.
type Outcome struct {
	Kind  OutcomeKind
	Token string
	Err   error
}

func TokenOutcome(token string) Outcome { return Outcome{Kind: OutcomeToken, Token: token} }

func UnsupportedOutcome() Outcome { return Outcome{Kind: OutcomeUnsupported} }

func DeniedOutcome() Outcome { return Outcome{Kind: OutcomeDenied} }

func ErrorOutcome(cause error) Outcome { return Outcome{Kind: OutcomeError, Err: cause} }

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeToken:
		return fmt.Sprintf("token(%s)", o.Token)
	case OutcomeError:
		return fmt.Sprintf("error(%v)", o.Err)
	default:
		return o.Kind.String()
	}
}

package notify

import (
	"fmt"

	"github.com/gotd/td/tg"
)

// DialogType distinguishes the dialog kinds the delay policy treats
// differently. SecretChat has no MTProto PeerClass of its own (secret
// chats are addressed by a separate encrypted-chat id space) so it is
// carried as an explicit tag rather than inferred from a tg.PeerClass.
type DialogType int

const (
	DialogTypeUser DialogType = iota
	DialogTypeChat
	DialogTypeChannel
	DialogTypeSecretChat
)

func (t DialogType) String() string {
	switch t {
	case DialogTypeUser:
		return "user"
	case DialogTypeChat:
		return "chat"
	case DialogTypeChannel:
		return "channel"
	case DialogTypeSecretChat:
		return "secret_chat"
	default:
		return fmt.Sprintf("DialogType(%d)", int(t))
	}
}

// DialogId identifies the dialog a notification belongs to. ID is the
// underlying peer/chat/channel/secret-chat identifier; it is not unique
// across Type (a user id and a chat id can collide numerically), so the
// pair is always compared together.
type DialogId struct {
	Type DialogType
	ID   int64
}

func (d DialogId) String() string {
	return fmt.Sprintf("%s:%d", d.Type, d.ID)
}

// DialogIDFromPeer derives a DialogId from a gotd PeerClass, the same
// three-way switch queue.go's peerToRecipient uses for outbound recipients.
// Secret chats never arrive as a tg.PeerClass; callers must construct
// DialogId{Type: DialogTypeSecretChat} directly for those.
func DialogIDFromPeer(peer tg.PeerClass) (DialogId, error) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return DialogId{Type: DialogTypeUser, ID: p.UserID}, nil
	case *tg.PeerChat:
		return DialogId{Type: DialogTypeChat, ID: p.ChatID}, nil
	case *tg.PeerChannel:
		return DialogId{Type: DialogTypeChannel, ID: p.ChannelID}, nil
	default:
		return DialogId{}, fmt.Errorf("notify: unsupported peer type %T", peer)
	}
}

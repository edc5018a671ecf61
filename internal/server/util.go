package server

import "crypto/rand"

// newRoomCode returns a 6-character code from an alphabet with the
// lookalike characters removed. Matching is case-insensitive.
func newRoomCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

var avatarPalette = []string{
	"#ff6b6b",
	"#4dabf7",
	"#51cf66",
	"#ffa94d",
	"#ffd43b",
	"#845ef7",
	"#20c997",
	"#e64980",
	"#339af0",
	"#f76707",
	"#94d82d",
	"#7048e8",
}

// pickAvatarColor returns the first palette color not already held in the
// room, so colors stay unique within a room.
func pickAvatarColor(used map[string]struct{}) string {
	for _, color := range avatarPalette {
		if _, taken := used[color]; !taken {
			return color
		}
	}
	return avatarPalette[len(used)%len(avatarPalette)]
}

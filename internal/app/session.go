package app

type sessionKey string

// SessionKeyHoldToken stores the session's single active hold token. A
// viewing session carries at most one hold at a time.
const SessionKeyHoldToken = sessionKey("holdToken")

func (s sessionKey) String() string {
	return string(s)
}

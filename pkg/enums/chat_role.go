package enums

// ChatRole is the speaker of a persisted assistant chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
	ChatRoleTool      ChatRole = "tool"
)

// String implements fmt.Stringer.
func (c ChatRole) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChatRole.
func (c ChatRole) IsValid() bool {
	switch c {
	case ChatRoleUser, ChatRoleAssistant, ChatRoleSystem, ChatRoleTool:
		return true
	default:
		return false
	}
}

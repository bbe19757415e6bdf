package policy

// ResourceKind identifies one of the portal's protected resource types.
type ResourceKind string

const (
	KindModule         ResourceKind = "module"
	KindEnrollment     ResourceKind = "enrollment"
	KindCourseSession  ResourceKind = "course_session"
	KindCourseResource ResourceKind = "course_resource"
	KindGrade          ResourceKind = "grade"
	KindAnnouncement   ResourceKind = "announcement"
	KindChatMessage    ResourceKind = "chat_message"
	KindNotification   ResourceKind = "notification"
)

func (k ResourceKind) String() string { return string(k) }

// Action is a mutation or read a principal wants to perform on a single row.
// Listing is not an Action: collection visibility goes through Scope.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionMarkRead covers the read-receipt flip on chat messages and
	// notifications. Message content itself is immutable.
	ActionMarkRead Action = "mark_read"
)

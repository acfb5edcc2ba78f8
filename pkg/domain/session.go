package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attribute keys collected during a conversation.
const (
	KeyRole              = "role"
	KeyStudentID         = "ra"
	KeyCourse            = "curso"
	KeySector            = "setor"
	KeyRequest           = "solicitacao"
	KeyFinancialAction   = "financeiro_acao"
	KeyFinancialDetail   = "financeiro_detalhe"
	KeyRegistrarAction   = "secretaria_acao"
	KeyRegistrarDetail   = "secretaria_detalhe"
	KeyDocument          = "documento_solicitado"
	KeyDocumentDelivery  = "documento_preferencia"
	KeyCourseQueryMode   = "consulta_curso"
	KeyCourseQueryText   = "consulta_curso_livre"
	KeyCourseQueryAnswer = "resposta_curso"
	KeyVisitorAction     = "visitante_acao"
)

// Role values stored under KeyRole.
const (
	RoleStudent = "student"
	RoleVisitor = "visitor"
)

// Session is the conversation state of a single user.
type Session struct {
	// UserID is the opaque identifier of the caller.
	UserID string `json:"user_id"`

	// AuditID is a short random identifier used to name the audit artifact.
	AuditID string `json:"audit_id"`

	// CreatedAt drives expiry. It is never refreshed.
	CreatedAt time.Time `json:"created_at"`

	// Step is the current position in the conversation.
	Step Step `json:"step"`

	// Attributes holds everything collected so far, in insertion order.
	Attributes Attributes `json:"attributes"`

	// Terminated is set once, when the session is removed after a terminal transition.
	Terminated bool `json:"terminated,omitempty"`
}

// NewSession creates a fresh session at StepAskRole.
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		AuditID:   NewAuditID(),
		CreatedAt: now,
		Step:      StepAskRole,
	}
}

// NewAuditID returns an 8-character random identifier.
func NewAuditID() string {
	return uuid.NewString()[:8]
}

// Expired reports whether more than ttl has elapsed since creation.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) > ttl
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Attributes = s.Attributes.Clone()
	return &c
}

package models

import "time"

// AuditEvent is one row in the append-only audit trail, keyed by entity type
// and id.
type AuditEvent struct {
	ID         string                 `bson:"id" json:"id"`
	EntityType string                 `bson:"entity_type" json:"entityType"` // "payout", "booking", "transaction"
	EntityID   string                 `bson:"entity_id" json:"entityId"`
	Action     string                 `bson:"action" json:"action"`
	ActorID    string                 `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	Detail     map[string]interface{} `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt  time.Time              `bson:"created_at" json:"createdAt"`
}

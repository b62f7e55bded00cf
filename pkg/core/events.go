// pkg/core/events.go
package core

// CollisionKind tells what an agent touched.
type CollisionKind string

const (
	CollisionObstacle CollisionKind = "obstacle"
	CollisionNeighbor CollisionKind = "neighbor"
)

// CollisionEvent is recorded the tick a contact is detected.
// OtherID is the obstacle index for obstacle contacts and the agent ID for
// neighbor contacts.
type CollisionEvent struct {
	Tick    uint          `json:"tick"`
	AgentID uint16        `json:"agentId"`
	Kind    CollisionKind `json:"kind"`
	OtherID uint16        `json:"otherId"`
	Contact Position3D    `json:"contact"` // lateral offset reported by the contact test
}

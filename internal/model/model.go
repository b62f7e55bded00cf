package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&Agent{},
	&AgentState{},
	&CollisionEvent{},
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Run is one recorded simulation
type Run struct {
	ID           uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunUUID      string         `json:"runId" gorm:"size:36;uniqueIndex"`
	ScenarioName string         `json:"scenarioName" gorm:"size:127"`
	StartTime    time.Time      `json:"startTime" gorm:"type:timestamptz;"`
	EndTime      sql.NullTime   `json:"endTime" gorm:"type:timestamptz;default:NULL"`
	TickRate     float64        `json:"tickRate"`
	Seed         int64          `json:"seed"` // stored signed; sqlite has no unsigned 64-bit integers
	Path         geom.Geometry  `json:"-"`    // LINESTRING Z of the pathway, empty when none
	Parameters   datatypes.JSON `json:"parameters" gorm:"default:'{}'"`
}

func (*Run) TableName() string {
	return "runs"
}

// Agent is a simulated vehicle registered for a run
type Agent struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID      uint           `json:"runId" gorm:"index:idx_agent_run_id"`
	Run        Run            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	AgentID    uint16         `json:"agentId"`
	Name       string         `json:"name" gorm:"size:64"`
	Behaviours datatypes.JSON `json:"behaviours" gorm:"default:'[]'"`
	JoinTick   uint           `json:"joinTick"`
}

func (*Agent) TableName() string {
	return "agents"
}

// Vec3 is a direction stored as three columns
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AgentState is the post-integration state of an agent at one tick
type AgentState struct {
	ID        uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID     uint       `json:"runId" gorm:"index:idx_agentstate_run_id"`
	Run       Run        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Tick      uint       `json:"tick" gorm:"index:idx_agentstate_tick"`
	AgentID   uint16     `json:"agentId" gorm:"index:idx_agentstate_agent_id"`
	SimTime   float64    `json:"simTime"`
	Position  geom.Point `json:"position"` // POINT Z (easting, northing, elevation)
	Forward   Vec3       `json:"forward" gorm:"embedded;embeddedPrefix:forward_"`
	Up        Vec3       `json:"up" gorm:"embedded;embeddedPrefix:up_"`
	Speed     float64    `json:"speed"`
	Steering  Vec3       `json:"steering" gorm:"embedded;embeddedPrefix:steering_"`
	Curvature float64    `json:"curvature"`
}

func (*AgentState) TableName() string {
	return "agent_states"
}

// CollisionEvent is a contact detected during a tick
type CollisionEvent struct {
	ID      uint   `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID   uint   `json:"runId" gorm:"index:idx_collision_run_id"`
	Run     Run    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Tick    uint   `json:"tick"`
	AgentID uint16 `json:"agentId"`
	Kind    string `json:"kind" gorm:"size:16"`
	OtherID uint16 `json:"otherId"`
	Contact Vec3   `json:"contact" gorm:"embedded;embeddedPrefix:contact_"`
}

func (*CollisionEvent) TableName() string {
	return "collision_events"
}

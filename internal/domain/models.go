// Package domain defines the persistence models for departments, counters,
// queues, and tokens. These types are mapped with GORM and form the core data
// layer of the outpatient queueing application.
package domain

import (
	"time"
)

// Department represents one hospital unit that issues its own token series
// (e.g. "Outpatient Department", code "OPD"). The short code doubles as the
// token number prefix.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: human-readable department name.
//   - Code: unique short code used as the token prefix (stored uppercase).
//   - AvgServiceTimeMinutes: average per-patient service time, used for
//     wait-time estimates on display boards.
//   - IsActive: deactivation blocks new token issuance but keeps history.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Department struct {
	ID                    string    `json:"id"                       gorm:"type:char(36);primaryKey"`
	Name                  string    `json:"name"                     gorm:"type:varchar(120);not null"`
	Code                  string    `json:"code"                     gorm:"type:varchar(12);not null;uniqueIndex:ux_department_code"`
	AvgServiceTimeMinutes int       `json:"avg_service_time_minutes" gorm:"not null;default:15"`
	IsActive              bool      `json:"is_active"                gorm:"not null;default:true"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName returns the database table name for Department.
func (Department) TableName() string { return "departments" }

// Counter represents one physical service point within a department. A counter
// serves at most one token at a time; the counter number is unique per
// department and the display code (e.g. "A") appears in token numbers.
type Counter struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	DepartmentID  string    `json:"department_id"  gorm:"type:char(36);not null;uniqueIndex:ux_counter_dept_number,priority:1;index"`
	CounterNumber int       `json:"counter_number" gorm:"not null;uniqueIndex:ux_counter_dept_number,priority:2"`
	CounterCode   string    `json:"counter_code"   gorm:"type:varchar(8);not null"`
	IsActive      bool      `json:"is_active"      gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Department is the owning unit. Counters are cascade-deleted if their
	// department is removed.
	Department Department `json:"-" gorm:"foreignKey:DepartmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Counter.
func (Counter) TableName() string { return "counters" }

// Queue identifies the token series for one department on one calendar day.
// Exactly one queue exists per (department, date); the uniqueness is enforced
// by ux_queue_dept_date at the schema level, not by application convention.
//
// CurrentTokenNumber is the high-water mark of sequence numbers issued so far.
// It is mutated only inside the token sequencer's transaction. IsPaused blocks
// calling the next token but never blocks token creation.
type Queue struct {
	ID                 string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	DepartmentID       string    `json:"department_id"        gorm:"type:char(36);not null;uniqueIndex:ux_queue_dept_date,priority:1;index"`
	Date               time.Time `json:"date"                 gorm:"type:DATETIME;not null;uniqueIndex:ux_queue_dept_date,priority:2"`
	CurrentTokenNumber int       `json:"current_token_number" gorm:"not null;default:0"`
	IsPaused           bool      `json:"is_paused"            gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Department is the owning unit. Queues are never deleted in normal
	// operation; the cascade only applies to demo-data teardown.
	Department Department `json:"-" gorm:"foreignKey:DepartmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Queue.
func (Queue) TableName() string { return "queues" }

// Token is one patient's place in a queue.
//
// TokenSequence is the true ordering key: strictly increasing and unique
// within a queue (ux_token_queue_seq). TokenNumber is the human-facing string
// derived from department code, counter code, and the zero-padded sequence
// (e.g. "OPD-A-007"); it never collides within a queue because the sequence
// cannot.
//
// Status walks WAITING → SERVING → SERVED and never backward (see
// ValidTransition). CounterID is an assignment, not ownership: it is set when
// the token is called and cleared semantics are owned by the serving state
// machine.
type Token struct {
	ID            string     `json:"id"                     gorm:"type:char(36);primaryKey"`
	QueueID       string     `json:"queue_id"               gorm:"type:char(36);not null;uniqueIndex:ux_token_queue_seq,priority:1;index"`
	CounterID     *string    `json:"counter_id,omitempty"   gorm:"type:char(36);index"`
	TokenNumber   string     `json:"token_number"           gorm:"type:varchar(32);not null"`
	TokenSequence int        `json:"token_sequence"         gorm:"not null;uniqueIndex:ux_token_queue_seq,priority:2"`
	PatientName   string     `json:"patient_name"           gorm:"type:varchar(120);not null"`
	PatientPhone  string     `json:"patient_phone"          gorm:"type:varchar(32);not null"`
	PatientAge    *int       `json:"patient_age,omitempty"`
	VisitReason   string     `json:"visit_reason,omitempty" gorm:"type:text"`
	IsPriority    bool       `json:"is_priority"            gorm:"not null;default:false;index:idx_token_queue_pick,priority:2"`
	Status        string     `json:"status"                 gorm:"type:varchar(16);not null;default:'WAITING';check:status IN ('WAITING','SERVING','SERVED');index:idx_token_queue_pick,priority:1"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ServingAt     *time.Time `json:"serving_at,omitempty"`
	ServedAt      *time.Time `json:"served_at,omitempty"`

	// Queue is the owning day-queue. Tokens are cascade-deleted with it.
	Queue Queue `json:"-" gorm:"foreignKey:QueueID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Token.
func (Token) TableName() string { return "tokens" }

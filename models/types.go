package models

import "time"

// Election status constants
const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"
)

// Voter roles
const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

// Request types

type CandidateInput struct {
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

type CreateElectionRequest struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	StartTime      *time.Time       `json:"start_time,omitempty"`
	EndTime        time.Time        `json:"end_time"`
	CandidateNames []string         `json:"candidate_names"`
	Candidates     []CandidateInput `json:"candidates,omitempty"`
	CreatorID      string           `json:"creator_id,omitempty"`
	Activate       bool             `json:"activate,omitempty"`
}

type AddCandidateRequest = CandidateInput

type CastVoteRequest struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	UserID      string `json:"user_id,omitempty"`
}

// Response types

// Receipt is returned for an accepted vote. It is never stored; the hash is
// recomputable from the persisted vote.
type Receipt struct {
	VoteHash    string    `json:"vote_hash"`
	ElectionID  string    `json:"election_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Message     string    `json:"message"`
}

type MyVoteResponse struct {
	Voted       bool       `json:"voted"`
	VoteHash    string     `json:"vote_hash,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

type ReceiptVerification struct {
	VoteHash    string    `json:"vote_hash"`
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Verified    bool      `json:"verified"`
}

type CandidateResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VoteCount int    `json:"vote_count"`
	Percent   int    `json:"percent"`
}

type ResultsResponse struct {
	ElectionID string            `json:"election_id"`
	Status     string            `json:"status"`
	Results    []CandidateResult `json:"results"`
	TotalVotes int               `json:"total_votes"`
}

type AuditReport struct {
	ElectionID     string         `json:"election_id"`
	TotalVotes     int            `json:"total_votes"`
	VerifiedVotes  int            `json:"verified_votes"`
	MismatchedIDs  []string       `json:"mismatched_vote_ids"`
	RecountedVotes map[string]int `json:"recounted_votes"`
	TallyMatches   bool           `json:"tally_matches"`
}

type VoteHistoryEntry struct {
	ElectionID    string    `json:"election_id"`
	ElectionTitle string    `json:"election_title"`
	VoteHash      string    `json:"vote_hash"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type MeResponse struct {
	Voter Voter              `json:"voter"`
	Votes []VoteHistoryEntry `json:"votes"`
}

// Domain types

type Candidate struct {
	ID         string `json:"id"`
	ElectionID string `json:"election_id"`
	Name       string `json:"name"`
	Bio        string `json:"bio,omitempty"`
}

type Election struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CreatedBy   string      `json:"created_by"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	ActivatedAt *time.Time  `json:"activated_at,omitempty"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Status      string      `json:"status"`
	IsActive    bool        `json:"is_active"`
	Candidates  []Candidate `json:"candidates"`
}

// HasCandidate reports whether candidateID belongs to the election.
func (e Election) HasCandidate(candidateID string) bool {
	for _, c := range e.Candidates {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}

// Voter is a read-only reference to an identity owned by the access gate.
type Voter struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (v Voter) IsAdmin() bool { return v.Role == RoleAdmin }

// Vote is append-only once persisted.
type Vote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	VoterID     string    `json:"-"` // Never expose in JSON
	SubmittedAt time.Time `json:"submitted_at"`
	Nonce       []byte    `json:"-"`
	ReceiptHash string    `json:"receipt_hash"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/ballot-core/middleware"
	"github.com/danielhkuo/ballot-core/models"
	"github.com/danielhkuo/ballot-core/testutil"
)

// TestConcurrentVoteSubmissions verifies that simultaneous votes from distinct
// voters are all recorded and tallied without loss
func TestConcurrentVoteSubmissions(t *testing.T) {
	h := newTestHandlers(t)
	e := h.createElection(t, true, "A", "B", "C")
	castVote := middleware.Authenticate(h.gate, h.voting.CastVote)

	numVoters := 100

	// Tokens are issued up front so the goroutines only exercise the vote path
	headers := make([]map[string]string, numVoters)
	for i := range numVoters {
		headers[i] = testutil.BearerHeaders(t, h.gate, testutil.Voter(fmt.Sprintf("voter-%03d", i)))
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup
	hashes := make([]string, numVoters)

	for i := range numVoters {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			body := models.CastVoteRequest{
				ElectionID:  e.ID,
				CandidateID: e.Candidates[voterIdx%3].ID,
			}
			w := httptest.NewRecorder()
			castVote(w, testutil.MakeRequest("POST", "/votes", body, headers[voterIdx]))

			if w.Code != http.StatusCreated {
				t.Errorf("Voter %d failed: %d - %s", voterIdx, w.Code, w.Body.String())
				return
			}

			var rec models.Receipt
			if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
				t.Errorf("Voter %d: decode receipt: %v", voterIdx, err)
				return
			}
			hashes[voterIdx] = rec.VoteHash
			successCount.Add(1)
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Fatalf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	seen := make(map[string]bool, numVoters)
	for i, hash := range hashes {
		if seen[hash] {
			t.Errorf("Voter %d received a duplicate receipt hash", i)
		}
		seen[hash] = true
	}

	res := h.getResults(t, e.ID)
	if res.TotalVotes != numVoters {
		t.Errorf("Expected %d total votes, got %d", numVoters, res.TotalVotes)
	}

	// 100 votes round-robin over 3 candidates: 34, 33, 33
	expected := []struct {
		count   int
		percent int
	}{{34, 34}, {33, 33}, {33, 33}}
	for i, row := range res.Results {
		if row.VoteCount != expected[i].count || row.Percent != expected[i].percent {
			t.Errorf("Candidate %s: expected %d votes (%d%%), got %d (%d%%)",
				row.Name, expected[i].count, expected[i].percent, row.VoteCount, row.Percent)
		}
	}
}

// TestConcurrentDuplicateVotes verifies that racing submissions from one voter
// produce exactly one accepted vote
func TestConcurrentDuplicateVotes(t *testing.T) {
	h := newTestHandlers(t)
	e := h.createElection(t, true, "A", "B")
	castVote := middleware.Authenticate(h.gate, h.voting.CastVote)
	headers := testutil.BearerHeaders(t, h.gate, testutil.Voter("eager"))

	numAttempts := 20

	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := range numAttempts {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()

			body := models.CastVoteRequest{
				ElectionID:  e.ID,
				CandidateID: e.Candidates[attempt%2].ID,
			}
			w := httptest.NewRecorder()
			castVote(w, testutil.MakeRequest("POST", "/votes", body, headers))

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				t.Errorf("Attempt %d: unexpected status %d - %s", attempt, w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted vote, got %d", created.Load())
	}
	if int(conflicts.Load()) != numAttempts-1 {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflicts.Load())
	}

	if res := h.getResults(t, e.ID); res.TotalVotes != 1 {
		t.Errorf("Expected 1 recorded vote, got %d", res.TotalVotes)
	}
}

// TestConcurrentReadsDuringVoting verifies results stay consistent while votes land
func TestConcurrentReadsDuringVoting(t *testing.T) {
	h := newTestHandlers(t)
	e := h.createElection(t, true, "A", "B")

	numVoters := 20
	var wg sync.WaitGroup

	for i := range numVoters {
		wg.Add(2)
		go func(voterIdx int) {
			defer wg.Done()
			w := h.castVote(e.ID, e.Candidates[voterIdx%2].ID, testutil.Voter(fmt.Sprintf("reader-voter-%d", voterIdx)))
			if w.Code != http.StatusCreated {
				t.Errorf("Voter %d failed: %d - %s", voterIdx, w.Code, w.Body.String())
			}
		}(i)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("GET", "/elections/"+e.ID+"/results", nil)
			req.SetPathValue("id", e.ID)
			w := httptest.NewRecorder()
			h.results.GetResults(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("Results read failed: %d", w.Code)
				return
			}

			var res models.ResultsResponse
			if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
				t.Errorf("Decode results: %v", err)
				return
			}
			sum := 0
			for _, row := range res.Results {
				sum += row.VoteCount
			}
			if sum != res.TotalVotes {
				t.Errorf("Row counts sum to %d but total is %d", sum, res.TotalVotes)
			}
		}()
	}

	wg.Wait()

	if res := h.getResults(t, e.ID); res.TotalVotes != numVoters {
		t.Errorf("Expected %d total votes, got %d", numVoters, res.TotalVotes)
	}
}

package server

import (
	"testing"
	"time"
)

func TestLeaderboardOrdersByPoints(t *testing.T) {
	now := time.Now()
	room := &Room{
		Participants: []Participant{
			{ID: 1, Name: "Ada", JoinedAt: now},
			{ID: 2, Name: "Grace", JoinedAt: now.Add(time.Second)},
			{ID: 3, Name: "Edsger", JoinedAt: now.Add(2 * time.Second)},
		},
		Session: &Session{
			Submissions: []GuessSubmission{
				{ParticipantID: 1, RoundNumber: 1, TotalScore: 4000},
				{ParticipantID: 2, RoundNumber: 1, TotalScore: 9000},
				{ParticipantID: 3, RoundNumber: 1, TotalScore: 6000},
				{ParticipantID: 1, RoundNumber: 2, TotalScore: 5000},
			},
		},
	}

	entries := computeLeaderboard(room)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantOrder := []int{1, 2, 3}
	wantPoints := []int{9000, 9000, 6000}
	if entries[0].ParticipantID != wantOrder[0] || entries[1].ParticipantID != wantOrder[1] {
		// 1 and 2 tie at 9000; Ada joined first and must rank ahead.
		t.Fatalf("expected order [1 2 3], got [%d %d %d]",
			entries[0].ParticipantID, entries[1].ParticipantID, entries[2].ParticipantID)
	}
	for i, entry := range entries {
		if entry.TotalPoints != wantPoints[i] {
			t.Fatalf("entry %d: expected %d points, got %d", i, wantPoints[i], entry.TotalPoints)
		}
	}
	if entries[0].RoundsPlayed != 2 {
		t.Fatalf("expected 2 rounds played for Ada, got %d", entries[0].RoundsPlayed)
	}
}

func TestLeaderboardTieBreaksByParticipantID(t *testing.T) {
	now := time.Now()
	room := &Room{
		Participants: []Participant{
			{ID: 2, Name: "Grace", JoinedAt: now},
			{ID: 1, Name: "Ada", JoinedAt: now},
		},
	}

	entries := computeLeaderboard(room)
	if entries[0].ParticipantID != 1 {
		t.Fatalf("expected participant 1 first on full tie, got %d", entries[0].ParticipantID)
	}
}

func TestLeaderboardKeepsDisconnectedScores(t *testing.T) {
	now := time.Now()
	room := &Room{
		Participants: []Participant{
			{ID: 1, Name: "Ada", Status: statusReady, JoinedAt: now},
			{ID: 2, Name: "Grace", Status: statusDisconnected, JoinedAt: now.Add(time.Second)},
		},
		Session: &Session{
			Submissions: []GuessSubmission{
				{ParticipantID: 2, RoundNumber: 1, TotalScore: 8000},
				{ParticipantID: 1, RoundNumber: 1, TotalScore: 3000},
			},
		},
	}

	entries := computeLeaderboard(room)
	if entries[0].ParticipantID != 2 || entries[0].TotalPoints != 8000 {
		t.Fatalf("expected disconnected leader to keep 8000 points, got participant %d with %d",
			entries[0].ParticipantID, entries[0].TotalPoints)
	}
}

func TestLeaderboardEmptyRoom(t *testing.T) {
	entries := computeLeaderboard(&Room{})
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

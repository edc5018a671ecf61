package server

import "sort"

// computeLeaderboard folds the ledger into ranked standings. It is a pure
// function of the room's participants and submissions, so any client can
// recompute it from a snapshot and land on the same ordering: points
// descending, ties broken by earliest join, then by participant ID.
func computeLeaderboard(room *Room) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(room.Participants))
	for _, participant := range room.Participants {
		entry := LeaderboardEntry{
			ParticipantID: participant.ID,
			Name:          participant.Name,
			AvatarColor:   participant.AvatarColor,
		}
		if room.Session != nil {
			for _, submission := range room.Session.Submissions {
				if submission.ParticipantID != participant.ID {
					continue
				}
				entry.TotalPoints += submission.TotalScore
				entry.RoundsPlayed++
			}
		}
		entries = append(entries, entry)
	}
	byID := make(map[int]Participant, len(room.Participants))
	for _, participant := range room.Participants {
		byID[participant.ID] = participant
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		a, b := byID[entries[i].ParticipantID], byID[entries[j].ParticipantID]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
	return entries
}

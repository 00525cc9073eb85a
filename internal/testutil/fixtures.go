package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/evote/internal/client/models"
)

// PNG is a minimal 1x1 PNG image.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

const VoterPassword = "secret123"

// Voter is the account most tests log in as.
func Voter() models.Profile {
	return models.Profile{
		FirstName:   "Ada",
		LastName:    "Obi",
		NationalID:  "12345678901",
		DateOfBirth: "1990-04-01",
		State:       "Lagos",
		LGA:         "Ikeja",
		VIN:         "90F5B0A1C2D3E4F56",
		ProfilePic:  "/media/profile_pics/ada.png",
	}
}

// PresidentialCandidates: party A has two candidates, B one, C none among
// the tallies.
func PresidentialCandidates() []models.Candidate {
	return []models.Candidate{
		{ID: 1, Name: "Amaka Eze", Party: "A", Age: 52, PartyImageURL: "/media/a.png"},
		{ID: 2, Name: "Bola Ade", Party: "B", Age: 61},
		{ID: 3, Name: "Chidi Okafor", Party: "A", Age: 47},
		{ID: 4, Name: "Dayo Bello", Party: "C", Age: 58},
	}
}

func PresidentialVotes() []models.PartyVote {
	return []models.PartyVote{
		{Party: "A", VoteCount: 10},
		{Party: "B", VoteCount: 30},
		{Party: "Z", VoteCount: 5},
	}
}

// SeedDefault adds Voter and the presidential fixtures.
func (b *Backend) SeedDefault() {
	b.AddUser(Voter(), VoterPassword)
	b.Seed(models.Presidential, PresidentialCandidates(), PresidentialVotes())
	b.Seed(models.Governorship, []models.Candidate{
		{ID: 11, Name: "Efe Ibe", Party: "A"},
		{ID: 12, Name: "Femi Ola", Party: "B"},
	}, []models.PartyVote{{Party: "A", VoteCount: 7}, {Party: "B", VoteCount: 7}})
}

// WritePhoto writes PNG to a temp file and returns its path.
func WritePhoto(t testing.TB) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(p, PNG, 0o600); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return p
}

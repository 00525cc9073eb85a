// Package testutil provides an in-process fake of the evote REST backend for
// tests. It speaks the same endpoints as the real server, issues HS256 JWTs,
// and lets a test inject faults, revoke tokens and inspect what was sent.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/models"
	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/go-chi/chi/v5"
)

const DefaultCastMessage = "Vote cast successfully."

// Fault replaces the next matching request's answer. A zero Status only
// applies Delay and lets the request through.
type Fault struct {
	Status int
	Body   string
	Delay  time.Duration
}

// Request is what the backend saw.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	profile   models.Profile
	password  string
	photoName string
}

type ctxKey struct{}

type Backend struct {
	Server *httptest.Server
	URL    string

	mu            sync.Mutex
	secret        []byte
	accessTTL     time.Duration
	accessGen     int
	refreshGen    int
	rotateRefresh bool
	rejectReused  bool
	usedRefresh   map[string]bool
	castMessage   string
	users         map[string]*account
	candidates    map[models.ElectionType][]models.Candidate
	tallies       map[models.ElectionType][]models.PartyVote
	ballots       map[string]map[models.ElectionType]int64
	faults        map[string][]Fault
	requests      []Request
}

// NewBackend starts a fake backend that is shut down with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		secret:      []byte("test-secret"),
		accessTTL:   time.Hour,
		castMessage: DefaultCastMessage,
		users:       map[string]*account{},
		candidates:  map[models.ElectionType][]models.Candidate{},
		tallies:     map[models.ElectionType][]models.PartyVote{},
		ballots:     map[string]map[models.ElectionType]int64{},
		faults:      map[string][]Fault{},
		usedRefresh: map[string]bool{},
	}
	for _, et := range models.ElectionTypes {
		b.candidates[et] = nil
		b.tallies[et] = nil
	}

	b.Server = httptest.NewServer(b.routes())
	b.URL = b.Server.URL
	t.Cleanup(b.Server.Close)

	return b
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.recordAndInject)

	r.Post("/auth/login/", b.handleLogin)
	r.Post("/auth/register/", b.handleRegister)
	r.Post("/auth/token/refresh/", b.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(b.requireAccess)
		r.Get("/vote/candidates/{type}/", b.handleCandidates)
		r.Get("/vote/party-votes/{type}/", b.handlePartyVotes)
		r.Post("/vote/cast/", b.handleCast)
	})

	return r
}

// AddUser creates an account that can log in.
func (b *Backend) AddUser(p models.Profile, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[p.NationalID] = &account{profile: p, password: password}
}

// Seed sets the candidates and party tallies served for t.
func (b *Backend) Seed(t models.ElectionType, cands []models.Candidate, votes []models.PartyVote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.candidates[t] = append([]models.Candidate(nil), cands...)
	b.tallies[t] = append([]models.PartyVote(nil), votes...)
}

// SetBallot records that nationalID already voted for candidateID in t.
func (b *Backend) SetBallot(nationalID string, t models.ElectionType, candidateID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ballots[nationalID] == nil {
		b.ballots[nationalID] = map[models.ElectionType]int64{}
	}
	b.ballots[nationalID][t] = candidateID
}

func (b *Backend) Ballot(nationalID string, t models.ElectionType) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.ballots[nationalID][t]
	return id, ok
}

func (b *Backend) Tally(t models.ElectionType) []models.PartyVote {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.PartyVote(nil), b.tallies[t]...)
}

// IssueTokens returns a valid token pair for nationalID.
func (b *Backend) IssueTokens(t testing.TB, nationalID string) (access, refresh string) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	access, refresh, err := b.issueLocked(nationalID)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return access, refresh
}

// ExpireAccessTokens invalidates every access token issued so far.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	b.accessGen++
	b.mu.Unlock()
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	b.refreshGen++
	b.mu.Unlock()
}

// SetRotateRefresh makes the refresh endpoint also return a new refresh token.
func (b *Backend) SetRotateRefresh(v bool) {
	b.mu.Lock()
	b.rotateRefresh = v
	b.mu.Unlock()
}

// SetRejectReusedRefresh makes the refresh endpoint accept each refresh token
// once, like a server that blacklists tokens after rotation.
func (b *Backend) SetRejectReusedRefresh(v bool) {
	b.mu.Lock()
	b.rejectReused = v
	b.mu.Unlock()
}

// SetCastMessage sets the message of successful vote answers. Empty omits it.
func (b *Backend) SetCastMessage(msg string) {
	b.mu.Lock()
	b.castMessage = msg
	b.mu.Unlock()
}

// FailNext queues f for the next request matching method and path.
func (b *Backend) FailNext(method, path string, f Fault) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.faults[key] = append(b.faults[key], f)
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests hit method and path.
func (b *Backend) Count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Registered returns the profile and uploaded photo name of an account.
func (b *Backend) Registered(nationalID string) (models.Profile, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.users[nationalID]
	if !ok {
		return models.Profile{}, "", false
	}
	return acc.profile, acc.photoName, true
}

func (b *Backend) issueLocked(nationalID string) (string, string, error) {
	access, err := GenerateToken(nationalID, tokenTypeAccess, b.accessGen, b.secret, b.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := GenerateToken(nationalID, tokenTypeRefresh, b.refreshGen, b.secret, 24*time.Hour)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (b *Backend) recordAndInject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get(common.AuthorizationHeaderName),
			RequestID:     r.Header.Get(common.RequestIDHeaderName),
		})

		key := r.Method + " " + r.URL.Path
		var fault *Fault
		if q := b.faults[key]; len(q) > 0 {
			fault = &q[0]
			b.faults[key] = q[1:]
		}
		b.mu.Unlock()

		if fault != nil {
			if fault.Delay > 0 {
				select {
				case <-time.After(fault.Delay):
				case <-r.Context().Done():
					return
				}
			}
			if fault.Status != 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(fault.Status)
				_, _ = w.Write([]byte(fault.Body))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerPrefix)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}

		claims, err := ParseToken(raw, b.secret)

		b.mu.Lock()
		valid := err == nil && claims.TokenType == tokenTypeAccess && claims.Generation == b.accessGen
		if valid {
			_, valid = b.users[claims.Subject]
		}
		b.mu.Unlock()

		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type", "code": "token_not_valid"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims.Subject)))
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.NationalID == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "National ID and password are required."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.users[in.NationalID]
	if !ok || acc.password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	access, refresh, err := b.issueLocked(in.NationalID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResult{User: acc.profile, Access: access, Refresh: refresh})
}

var registrationFields = []string{"national_id", "first_name", "last_name", "date_of_birth", "state", "lga", "vin", "password"}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Expected multipart form data."})
		return
	}

	for _, name := range registrationFields {
		if r.FormValue(name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": name + " is required."})
			return
		}
	}

	file, header, err := r.FormFile("profile_pic")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "profile_pic is required."})
		return
	}
	_ = file.Close()

	nationalID := r.FormValue("national_id")

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.users[nationalID]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User with this National ID already exists."})
		return
	}

	b.users[nationalID] = &account{
		profile: models.Profile{
			FirstName:   r.FormValue("first_name"),
			LastName:    r.FormValue("last_name"),
			NationalID:  nationalID,
			DateOfBirth: r.FormValue("date_of_birth"),
			State:       r.FormValue("state"),
			LGA:         r.FormValue("lga"),
			VIN:         r.FormValue("vin"),
			ProfilePic:  "/media/profile_pics/" + header.Filename,
		},
		password:  r.FormValue("password"),
		photoName: header.Filename,
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Registration successful."})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "This field is required."})
		return
	}

	claims, err := ParseToken(in.Refresh, b.secret)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil || claims.TokenType != tokenTypeRefresh || claims.Generation != b.refreshGen {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	if b.rejectReused {
		if b.usedRefresh[claims.ID] {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is blacklisted", "code": "token_not_valid"})
			return
		}
		b.usedRefresh[claims.ID] = true
	}

	access, refresh, err := b.issueLocked(claims.Subject)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := map[string]string{"access": access}
	if b.rotateRefresh {
		out["refresh"] = refresh
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) electionType(w http.ResponseWriter, r *http.Request) (models.ElectionType, bool) {
	t := models.ElectionType(chi.URLParam(r, "type"))
	if _, ok := b.candidates[t]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return "", false
	}
	return t, true
}

func (b *Backend) handleCandidates(w http.ResponseWriter, r *http.Request) {
	voter, _ := r.Context().Value(ctxKey{}).(string)

	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.electionType(w, r)
	if !ok {
		return
	}

	voted, hasVoted := b.ballots[voter][t]
	out := make([]models.Candidate, 0, len(b.candidates[t]))
	for _, c := range b.candidates[t] {
		c.UserVoted = hasVoted && c.ID == voted
		out = append(out, c)
	}

	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handlePartyVotes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.electionType(w, r)
	if !ok {
		return
	}

	out := append([]models.PartyVote{}, b.tallies[t]...)
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCast(w http.ResponseWriter, r *http.Request) {
	voter, _ := r.Context().Value(ctxKey{}).(string)

	var in models.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Candidate == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Candidate is required."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var (
		found bool
		t     models.ElectionType
		cand  models.Candidate
	)
	for _, et := range models.ElectionTypes {
		for _, c := range b.candidates[et] {
			if c.ID == in.Candidate {
				found, t, cand = true, et, c
			}
		}
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Candidate not found."})
		return
	}

	if _, voted := b.ballots[voter][t]; voted {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "You have already voted in this category."})
		return
	}

	if b.ballots[voter] == nil {
		b.ballots[voter] = map[models.ElectionType]int64{}
	}
	b.ballots[voter][t] = cand.ID

	counted := false
	for i := range b.tallies[t] {
		if b.tallies[t][i].Party == cand.Party {
			b.tallies[t][i].VoteCount++
			counted = true
		}
	}
	if !counted {
		b.tallies[t] = append(b.tallies[t], models.PartyVote{Party: cand.Party, VoteCount: 1, PartyImageURL: cand.PartyImageURL})
	}

	out := map[string]string{}
	if b.castMessage != "" {
		out["message"] = b.castMessage
	}
	writeJSON(w, http.StatusCreated, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
